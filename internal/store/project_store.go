package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"

	bolt "go.etcd.io/bbolt"

	"parley/internal/types"
)

var ErrNotFound = errors.New("not found")

// ProjectStore keeps one nested bucket per owner. Workflow and task ids are
// counters scoped to their parent, persisted with the record so they are
// never reused even after deletes.
type ProjectStore struct {
	db *bolt.DB
	mu sync.Mutex
}

type projectRecord struct {
	types.Project
	Owner          string            `json:"owner"`
	NextWorkflowID uint64            `json:"next_workflow_id"`
	NextTaskID     map[string]uint64 `json:"next_task_id"`
}

func (s *ProjectStore) ListForOwner(ctx context.Context, owner string) ([]types.Project, error) {
	out := make([]types.Project, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProjects).Bucket([]byte(owner))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var rec projectRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec.Project)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ProjectStore) Get(ctx context.Context, owner string, id uint64) (*types.Project, bool, error) {
	rec, ok, err := s.getRecord(owner, id)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &rec.Project, true, nil
}

func (s *ProjectStore) Create(ctx context.Context, owner, name string) (*types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("project name is required")
	}

	var project types.Project
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(bucketProjects).CreateBucketIfNotExists([]byte(owner))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		rec := projectRecord{
			Project: types.Project{
				ID:        seq,
				Name:      name,
				Workflows: []types.Workflow{},
			},
			Owner:          owner,
			NextWorkflowID: 1,
			NextTaskID:     map[string]uint64{},
		}
		project = rec.Project
		raw, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(itob(seq), raw)
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Update replaces the project's descriptive fields. Workflow and task id
// counters survive the replacement.
func (s *ProjectStore) Update(ctx context.Context, owner string, project types.Project) (*types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var updated types.Project
	err := s.mutateRecord(owner, project.ID, func(rec *projectRecord) error {
		rec.Name = strings.TrimSpace(project.Name)
		if rec.Name == "" {
			return errors.New("project name is required")
		}
		rec.Workflows = project.Workflows
		updated = rec.Project
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *ProjectStore) Delete(ctx context.Context, owner string, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProjects).Bucket([]byte(owner))
		if b == nil || b.Get(itob(id)) == nil {
			return ErrNotFound
		}
		return b.Delete(itob(id))
	})
}

func (s *ProjectStore) AddWorkflow(ctx context.Context, owner string, projectID uint64, name string) (*types.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("workflow name is required")
	}
	var workflow types.Workflow
	err := s.mutateRecord(owner, projectID, func(rec *projectRecord) error {
		workflow = types.Workflow{
			ID:    rec.NextWorkflowID,
			Name:  name,
			Tasks: []types.Task{},
		}
		rec.NextWorkflowID++
		rec.Workflows = append(rec.Workflows, workflow)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (s *ProjectStore) AddTask(ctx context.Context, owner string, projectID, workflowID uint64, description string) (*types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	description = strings.TrimSpace(description)
	if description == "" {
		return nil, errors.New("task description is required")
	}
	var task types.Task
	err := s.mutateRecord(owner, projectID, func(rec *projectRecord) error {
		for i := range rec.Workflows {
			if rec.Workflows[i].ID != workflowID {
				continue
			}
			wfKey := strconv.FormatUint(workflowID, 10)
			next := rec.NextTaskID[wfKey]
			if next == 0 {
				next = 1
			}
			task = types.Task{ID: next, Description: description}
			rec.NextTaskID[wfKey] = next + 1
			rec.Workflows[i].Tasks = append(rec.Workflows[i].Tasks, task)
			return nil
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *ProjectStore) getRecord(owner string, id uint64) (*projectRecord, bool, error) {
	var (
		out *projectRecord
		ok  bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProjects).Bucket([]byte(owner))
		if b == nil {
			return nil
		}
		raw := b.Get(itob(id))
		if len(raw) == 0 {
			return nil
		}
		var rec projectRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		out = &rec
		ok = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, ok, nil
}

func (s *ProjectStore) mutateRecord(owner string, id uint64, mutate func(*projectRecord) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketProjects).Bucket([]byte(owner))
		if b == nil {
			return ErrNotFound
		}
		raw := b.Get(itob(id))
		if len(raw) == 0 {
			return ErrNotFound
		}
		var rec projectRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		if rec.NextTaskID == nil {
			rec.NextTaskID = map[string]uint64{}
		}
		if err := mutate(&rec); err != nil {
			return err
		}
		next, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put(itob(id), next)
	})
}
