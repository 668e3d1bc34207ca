package sync

import (
	"context"
	"strings"

	"parley/internal/backend"
	"parley/internal/cache"
	"parley/internal/logging"
	"parley/internal/types"
)

// Mutator executes write operations against the backend and, on success,
// invalidates the affected entity keys so the query runner re-pulls
// authoritative state. Failures invalidate nothing: a mutation is atomic
// from the caller's perspective.
type Mutator struct {
	backend Backend
	runner  *Runner
	log     logging.Logger
}

func NewMutator(b Backend, runner *Runner, log logging.Logger) *Mutator {
	if log == nil {
		log = logging.Nop()
	}
	return &Mutator{backend: b, runner: runner, log: log}
}

// SaveProfile validates and saves the caller's display name, then
// invalidates the profile key. Validation failures never reach the backend.
func (m *Mutator) SaveProfile(ctx context.Context, displayName string) error {
	trimmed := strings.TrimSpace(displayName)
	if trimmed == "" {
		return backend.NewValidationError("Display name is required.")
	}
	if len([]rune(trimmed)) < types.DisplayNameMinLen {
		return backend.NewValidationError("Display name must be at least 2 characters.")
	}
	if len([]rune(trimmed)) > types.DisplayNameMaxLen {
		return backend.NewValidationError("Display name must be 32 characters or fewer.")
	}
	if err := m.backend.SaveCallerUserProfile(ctx, types.UserProfile{Name: trimmed}); err != nil {
		return backend.Classify(err)
	}
	m.runner.Invalidate(cache.ProfileKey())
	return nil
}

// SendMessage dispatches the optimistic send. The caller clears its input
// before invoking this; on failure it restores the input from the returned
// error path and nothing is invalidated. The confirmed refetch after success
// is authoritative — the local echo is never treated as a ledger.
func (m *Mutator) SendMessage(ctx context.Context, recipient, content string) (*types.Message, error) {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil, backend.NewValidationError("Recipient is required.")
	}
	if strings.TrimSpace(content) == "" {
		return nil, backend.NewValidationError("Message content is required.")
	}
	msg, err := m.backend.SendMessage(ctx, recipient, content)
	if err != nil {
		return nil, backend.Classify(err)
	}
	m.runner.Invalidate(cache.ConversationKey(recipient), cache.ConversationsKey())
	return msg, nil
}

// MarkConversationRead resets the unread counter for peer.
func (m *Mutator) MarkConversationRead(ctx context.Context, peer string) error {
	if strings.TrimSpace(peer) == "" {
		return backend.NewValidationError("Peer is required.")
	}
	if err := m.backend.MarkConversationRead(ctx, peer); err != nil {
		return backend.Classify(err)
	}
	m.runner.Invalidate(cache.ConversationsKey())
	return nil
}

func (m *Mutator) CreateProject(ctx context.Context, name string) (*types.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, backend.NewValidationError("Project name is required.")
	}
	project, err := m.backend.CreateProject(ctx, name)
	if err != nil {
		return nil, backend.Classify(err)
	}
	m.runner.Invalidate(cache.ProjectsKey())
	return project, nil
}

func (m *Mutator) UpdateProject(ctx context.Context, project types.Project) error {
	if strings.TrimSpace(project.Name) == "" {
		return backend.NewValidationError("Project name is required.")
	}
	if err := m.backend.UpdateProject(ctx, project); err != nil {
		return backend.Classify(err)
	}
	m.runner.Invalidate(cache.ProjectsKey(), cache.ProjectKey(project.ID))
	return nil
}

func (m *Mutator) DeleteProject(ctx context.Context, id uint64) error {
	if err := m.backend.DeleteProject(ctx, id); err != nil {
		return backend.Classify(err)
	}
	m.runner.Invalidate(cache.ProjectsKey())
	return nil
}

func (m *Mutator) AddWorkflow(ctx context.Context, projectID uint64, name string) (*types.Workflow, error) {
	if strings.TrimSpace(name) == "" {
		return nil, backend.NewValidationError("Workflow name is required.")
	}
	workflow, err := m.backend.AddWorkflow(ctx, projectID, name)
	if err != nil {
		return nil, backend.Classify(err)
	}
	m.runner.Invalidate(cache.ProjectsKey())
	return workflow, nil
}

func (m *Mutator) AddTask(ctx context.Context, projectID, workflowID uint64, description string) (*types.Task, error) {
	if strings.TrimSpace(description) == "" {
		return nil, backend.NewValidationError("Task description is required.")
	}
	task, err := m.backend.AddTask(ctx, projectID, workflowID, description)
	if err != nil {
		return nil, backend.Classify(err)
	}
	m.runner.Invalidate(cache.ProjectsKey())
	return task, nil
}

// AssignRole is a passthrough admin operation; it touches no cached keys.
func (m *Mutator) AssignRole(ctx context.Context, principal string, role types.UserRole) error {
	if err := m.backend.AssignRole(ctx, principal, role); err != nil {
		return backend.Classify(err)
	}
	return nil
}
