package sync

import (
	"context"
	"errors"
	"strings"
	"testing"

	"parley/internal/backend"
	"parley/internal/cache"
	"parley/internal/types"
)

// fakeBackend counts write calls and can be told to fail them.
type fakeBackend struct {
	saveProfileCalls int
	sendCalls        int
	failSend         bool
	failSave         bool
}

func (f *fakeBackend) GetCallerUserProfile(ctx context.Context) (*types.UserProfile, error) {
	return nil, nil
}

func (f *fakeBackend) SaveCallerUserProfile(ctx context.Context, profile types.UserProfile) error {
	f.saveProfileCalls++
	if f.failSave {
		return errors.New("save failed")
	}
	return nil
}

func (f *fakeBackend) GetCallerUserRole(ctx context.Context) (types.UserRole, error) {
	return types.UserRoleUser, nil
}

func (f *fakeBackend) IsCallerAdmin(ctx context.Context) (bool, error) { return false, nil }

func (f *fakeBackend) AssignRole(ctx context.Context, principal string, role types.UserRole) error {
	return nil
}

func (f *fakeBackend) ListUsers(ctx context.Context) ([]types.ChatUser, error) { return nil, nil }

func (f *fakeBackend) ListConversations(ctx context.Context) ([]types.Conversation, error) {
	return nil, nil
}

func (f *fakeBackend) GetConversation(ctx context.Context, peer string) ([]types.Message, error) {
	return nil, nil
}

func (f *fakeBackend) MarkConversationRead(ctx context.Context, peer string) error { return nil }

func (f *fakeBackend) SendMessage(ctx context.Context, recipient, content string) (*types.Message, error) {
	f.sendCalls++
	if f.failSend {
		return nil, errors.New("send failed")
	}
	return &types.Message{ID: 1, Recipient: recipient, Content: content}, nil
}

func (f *fakeBackend) GetProjects(ctx context.Context) ([]types.Project, error) { return nil, nil }

func (f *fakeBackend) GetProject(ctx context.Context, id uint64) (*types.Project, error) {
	return nil, nil
}

func (f *fakeBackend) CreateProject(ctx context.Context, name string) (*types.Project, error) {
	return &types.Project{ID: 1, Name: name}, nil
}

func (f *fakeBackend) UpdateProject(ctx context.Context, project types.Project) error { return nil }

func (f *fakeBackend) DeleteProject(ctx context.Context, id uint64) error { return nil }

func (f *fakeBackend) AddWorkflow(ctx context.Context, projectID uint64, name string) (*types.Workflow, error) {
	return &types.Workflow{ID: 1, Name: name}, nil
}

func (f *fakeBackend) AddTask(ctx context.Context, projectID, workflowID uint64, description string) (*types.Task, error) {
	return &types.Task{ID: 1, Description: description}, nil
}

func newTestMutator(b Backend) (*Mutator, *cache.Store) {
	store := cache.NewStore()
	runner := NewRunner(store, nil)
	return NewMutator(b, runner, nil), store
}

func TestSaveProfileValidatesBeforeBackend(t *testing.T) {
	fake := &fakeBackend{}
	mutator, _ := newTestMutator(fake)
	ctx := context.Background()

	cases := []struct {
		name  string
		input string
		ok    bool
	}{
		{"empty", "   ", false},
		{"one char", "A", false},
		{"too long", strings.Repeat("x", 33), false},
		{"min length", "Al", true},
		{"max length", strings.Repeat("x", 32), true},
		{"trimmed", "  Alice  ", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := fake.saveProfileCalls
			err := mutator.SaveProfile(ctx, tc.input)
			if tc.ok {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				if fake.saveProfileCalls != before+1 {
					t.Fatalf("expected backend call")
				}
				return
			}
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var backendErr *backend.Error
			if !errors.As(err, &backendErr) || backendErr.Kind != backend.KindValidation {
				t.Fatalf("expected validation kind, got %v", err)
			}
			if fake.saveProfileCalls != before {
				t.Fatalf("invalid input must never reach the backend")
			}
		})
	}
}

func TestSaveProfileInvalidatesProfileKey(t *testing.T) {
	mutator, store := newTestMutator(&fakeBackend{})
	store.Set(cache.ProfileKey(), &types.UserProfile{Name: "Old"})

	if err := mutator.SaveProfile(context.Background(), "New Name"); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !store.Get(cache.ProfileKey()).Stale {
		t.Fatalf("expected profile key invalidated")
	}
}

func TestSendMessageInvalidatesOnSuccessOnly(t *testing.T) {
	fake := &fakeBackend{}
	mutator, store := newTestMutator(fake)
	ctx := context.Background()

	store.Set(cache.ConversationKey("bob"), []types.Message{})
	store.Set(cache.ConversationsKey(), []types.Conversation{})

	msg, err := mutator.SendMessage(ctx, "bob", "hello")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if msg == nil || msg.ID == 0 {
		t.Fatalf("expected confirmed message")
	}
	if !store.Get(cache.ConversationKey("bob")).Stale {
		t.Fatalf("expected thread invalidated")
	}
	if !store.Get(cache.ConversationsKey()).Stale {
		t.Fatalf("expected conversation list invalidated")
	}

	// Failed sends leave the cache untouched.
	store.Set(cache.ConversationKey("bob"), []types.Message{})
	store.Set(cache.ConversationsKey(), []types.Conversation{})
	fake.failSend = true
	if _, err := mutator.SendMessage(ctx, "bob", "again"); err == nil {
		t.Fatalf("expected send failure")
	}
	if store.Get(cache.ConversationKey("bob")).Stale {
		t.Fatalf("failed send must not invalidate the thread")
	}
	if store.Get(cache.ConversationsKey()).Stale {
		t.Fatalf("failed send must not invalidate the list")
	}
}

func TestSendMessageValidation(t *testing.T) {
	fake := &fakeBackend{}
	mutator, _ := newTestMutator(fake)
	ctx := context.Background()

	if _, err := mutator.SendMessage(ctx, "", "hi"); err == nil {
		t.Fatalf("expected recipient validation error")
	}
	if _, err := mutator.SendMessage(ctx, "bob", "   "); err == nil {
		t.Fatalf("expected content validation error")
	}
	if fake.sendCalls != 0 {
		t.Fatalf("invalid sends must not reach the backend")
	}
}

func TestProjectMutationsInvalidateProjects(t *testing.T) {
	mutator, store := newTestMutator(&fakeBackend{})
	ctx := context.Background()

	store.Set(cache.ProjectsKey(), []types.Project{})
	if _, err := mutator.CreateProject(ctx, "Roadmap"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !store.Get(cache.ProjectsKey()).Stale {
		t.Fatalf("expected projects invalidated after create")
	}

	store.Set(cache.ProjectsKey(), []types.Project{})
	if _, err := mutator.AddWorkflow(ctx, 1, "Build"); err != nil {
		t.Fatalf("add workflow: %v", err)
	}
	if !store.Get(cache.ProjectsKey()).Stale {
		t.Fatalf("expected projects invalidated after workflow add")
	}

	store.Set(cache.ProjectsKey(), []types.Project{})
	store.Set(cache.ProjectKey(1), &types.Project{ID: 1})
	if err := mutator.UpdateProject(ctx, types.Project{ID: 1, Name: "Renamed"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !store.Get(cache.ProjectsKey()).Stale || !store.Get(cache.ProjectKey(1)).Stale {
		t.Fatalf("expected project keys invalidated after update")
	}
}
