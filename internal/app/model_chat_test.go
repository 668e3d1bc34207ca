package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"parley/internal/backend"
	"parley/internal/cache"
	syncer "parley/internal/sync"
	"parley/internal/types"
)

// stubBackend serves canned conversation state to the engine.
type stubBackend struct {
	messages map[string][]types.Message
}

func (s *stubBackend) GetCallerUserProfile(ctx context.Context) (*types.UserProfile, error) {
	return &types.UserProfile{Name: "Alice"}, nil
}

func (s *stubBackend) SaveCallerUserProfile(ctx context.Context, profile types.UserProfile) error {
	return nil
}

func (s *stubBackend) GetCallerUserRole(ctx context.Context) (types.UserRole, error) {
	return types.UserRoleUser, nil
}

func (s *stubBackend) IsCallerAdmin(ctx context.Context) (bool, error) { return false, nil }

func (s *stubBackend) AssignRole(ctx context.Context, principal string, role types.UserRole) error {
	return nil
}

func (s *stubBackend) ListUsers(ctx context.Context) ([]types.ChatUser, error) { return nil, nil }

func (s *stubBackend) ListConversations(ctx context.Context) ([]types.Conversation, error) {
	return nil, nil
}

func (s *stubBackend) GetConversation(ctx context.Context, peer string) ([]types.Message, error) {
	return s.messages[peer], nil
}

func (s *stubBackend) MarkConversationRead(ctx context.Context, peer string) error { return nil }

func (s *stubBackend) SendMessage(ctx context.Context, recipient, content string) (*types.Message, error) {
	return &types.Message{ID: 1, Recipient: recipient, Content: content}, nil
}

func (s *stubBackend) GetProjects(ctx context.Context) ([]types.Project, error) { return nil, nil }

func (s *stubBackend) GetProject(ctx context.Context, id uint64) (*types.Project, error) {
	return nil, nil
}

func (s *stubBackend) CreateProject(ctx context.Context, name string) (*types.Project, error) {
	return nil, nil
}

func (s *stubBackend) UpdateProject(ctx context.Context, project types.Project) error { return nil }

func (s *stubBackend) DeleteProject(ctx context.Context, id uint64) error { return nil }

func (s *stubBackend) AddWorkflow(ctx context.Context, projectID uint64, name string) (*types.Workflow, error) {
	return nil, nil
}

func (s *stubBackend) AddTask(ctx context.Context, projectID, workflowID uint64, description string) (*types.Task, error) {
	return nil, nil
}

func newChatModel(t *testing.T, stub *stubBackend) *Model {
	t.Helper()
	model := NewModel(nil, nil, nil)
	model.engine = syncer.NewEngine(stub, nil, syncer.EngineOptions{})
	t.Cleanup(model.engine.Close)
	model.principal = "alice@example.com"
	model.selectedPeer = "bob@example.com"
	return &model
}

func TestSendClearsInputAndShowsPendingEcho(t *testing.T) {
	m := newChatModel(t, &stubBackend{})
	m.composeInput.SetValue("hello bob")

	cmd := m.sendCurrent()
	if cmd == nil {
		t.Fatalf("expected a send command")
	}
	if m.composeInput.Value() != "" {
		t.Fatalf("compose input not cleared, got %q", m.composeInput.Value())
	}
	messages := m.threadMessages()
	if len(messages) != 1 {
		t.Fatalf("expected one pending echo, got %d messages", len(messages))
	}
	if messages[0].ID != 0 || messages[0].Content != "hello bob" {
		t.Fatalf("unexpected echo: %+v", messages[0])
	}
}

func TestFailedSendRestoresInput(t *testing.T) {
	m := newChatModel(t, &stubBackend{})
	m.composeInput.SetValue("hello bob")
	m.sendCurrent()

	m.handleMessageSent(messageSentMsg{
		recipient: "bob@example.com",
		content:   "hello bob",
		err:       backend.NewValidationError("Message content is required."),
	})

	if m.composeInput.Value() != "hello bob" {
		t.Fatalf("input not restored, got %q", m.composeInput.Value())
	}
	if len(m.pending["bob@example.com"]) != 0 {
		t.Fatalf("pending echo not removed: %+v", m.pending["bob@example.com"])
	}
	if len(m.threadMessages()) != 0 {
		t.Fatalf("failed send still rendered in thread")
	}
	if m.status != "Message content is required." {
		t.Fatalf("unexpected status %q", m.status)
	}
}

func TestFailedSendKeepsNewerTyping(t *testing.T) {
	m := newChatModel(t, &stubBackend{})
	m.composeInput.SetValue("hello bob")
	m.sendCurrent()

	// The user started a new message before the failure came back; the old
	// content must not clobber it.
	m.composeInput.SetValue("second thought")
	m.handleMessageSent(messageSentMsg{
		recipient: "bob@example.com",
		content:   "hello bob",
		err:       errors.New("send failed"),
	})

	if m.composeInput.Value() != "second thought" {
		t.Fatalf("newer typing clobbered, got %q", m.composeInput.Value())
	}
}

func TestPendingEchoReconciledByRefetch(t *testing.T) {
	m := newChatModel(t, &stubBackend{})
	m.composeInput.SetValue("hello bob")
	m.sendCurrent()

	// The refetched thread now carries the confirmed message; the local echo
	// is dropped rather than shown twice.
	m.engine.Store().Set(cache.ConversationKey("bob@example.com"), []types.Message{{
		ID:        7,
		Sender:    "alice@example.com",
		Recipient: "bob@example.com",
		Content:   "hello bob",
		Timestamp: time.Now().UnixNano(),
	}})

	messages := m.threadMessages()
	if len(messages) != 1 {
		t.Fatalf("expected one message after reconcile, got %d", len(messages))
	}
	if messages[0].ID != 7 {
		t.Fatalf("confirmed message missing, got %+v", messages[0])
	}
	if len(m.pending["bob@example.com"]) != 0 {
		t.Fatalf("pending entry survived reconcile")
	}
}
