package store

import (
	"context"
	"path/filepath"
	"testing"

	"parley/internal/types"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "parley.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestProfileStoreBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	profiles := repo.Profiles()

	if err := profiles.Put(ctx, "alice@example.com", types.UserProfile{Name: "Alice"}); err != nil {
		t.Fatalf("put alice: %v", err)
	}
	if err := profiles.Put(ctx, "bob@example.com", types.UserProfile{Name: "Bob"}); err != nil {
		t.Fatalf("put bob: %v", err)
	}

	role, err := profiles.Role(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("role alice: %v", err)
	}
	if role != types.UserRoleAdmin {
		t.Fatalf("first registered user should be admin, got %v", role)
	}
	role, err = profiles.Role(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("role bob: %v", err)
	}
	if role != types.UserRoleUser {
		t.Fatalf("second user should be user, got %v", role)
	}
	role, err = profiles.Role(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("role nobody: %v", err)
	}
	if role != types.UserRoleGuest {
		t.Fatalf("unregistered principal should be guest, got %v", role)
	}
}

func TestProfileStoreUpsertKeepsRole(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	profiles := repo.Profiles()

	if err := profiles.Put(ctx, "alice@example.com", types.UserProfile{Name: "Alice"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := profiles.Put(ctx, "alice@example.com", types.UserProfile{Name: "Alicia"}); err != nil {
		t.Fatalf("rename: %v", err)
	}

	profile, ok, err := profiles.Get(ctx, "alice@example.com")
	if err != nil || !ok {
		t.Fatalf("get: %v ok=%v", err, ok)
	}
	if profile.Name != "Alicia" {
		t.Fatalf("expected renamed profile, got %q", profile.Name)
	}
	role, err := profiles.Role(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("role: %v", err)
	}
	if role != types.UserRoleAdmin {
		t.Fatalf("re-save must not demote the bootstrap admin, got %v", role)
	}
}

func TestProfileStoreListSorted(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	profiles := repo.Profiles()

	_ = profiles.Put(ctx, "c@example.com", types.UserProfile{Name: "Zoe"})
	_ = profiles.Put(ctx, "a@example.com", types.UserProfile{Name: "Alice"})
	_ = profiles.Put(ctx, "b@example.com", types.UserProfile{Name: "Bob"})

	users, err := profiles.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users, got %d", len(users))
	}
	if users[0].DisplayName != "Alice" || users[1].DisplayName != "Bob" || users[2].DisplayName != "Zoe" {
		t.Fatalf("directory not sorted by display name: %+v", users)
	}
}

func TestMessageStoreAppendAndList(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	messages := repo.Messages()

	first, err := messages.Append(ctx, "alice", "bob", "hello")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	second, err := messages.Append(ctx, "bob", "alice", "hi back")
	if err != nil {
		t.Fatalf("append reply: %v", err)
	}
	if second.ID <= first.ID {
		t.Fatalf("ids must be monotonic within a conversation: %d then %d", first.ID, second.ID)
	}
	if second.Timestamp < first.Timestamp {
		t.Fatalf("timestamps must not regress")
	}

	// Both participants address the same thread.
	thread, err := messages.List(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(thread) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(thread))
	}
	if thread[0].Content != "hello" || thread[1].Content != "hi back" {
		t.Fatalf("unexpected order: %+v", thread)
	}
}

func TestMessageStoreUnreadCounts(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	messages := repo.Messages()

	_, _ = messages.Append(ctx, "alice", "bob", "one")
	_, _ = messages.Append(ctx, "alice", "bob", "two")

	summaries, err := messages.ConversationsFor(ctx, "bob")
	if err != nil {
		t.Fatalf("conversations: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one conversation, got %d", len(summaries))
	}
	if summaries[0].Peer != "alice" || summaries[0].Unread != 2 {
		t.Fatalf("unexpected summary: %+v", summaries[0])
	}
	if summaries[0].LastMessage == nil || summaries[0].LastMessage.Content != "two" {
		t.Fatalf("expected last message projection, got %+v", summaries[0].LastMessage)
	}

	// The sender has nothing unread.
	summaries, err = messages.ConversationsFor(ctx, "alice")
	if err != nil {
		t.Fatalf("conversations for sender: %v", err)
	}
	if summaries[0].Unread != 0 {
		t.Fatalf("sender should have 0 unread, got %d", summaries[0].Unread)
	}

	if err := messages.MarkRead(ctx, "bob", "alice"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	summaries, _ = messages.ConversationsFor(ctx, "bob")
	if summaries[0].Unread != 0 {
		t.Fatalf("expected unread reset, got %d", summaries[0].Unread)
	}
}

func TestMessageStoreValidation(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	messages := repo.Messages()

	if _, err := messages.Append(ctx, "alice", "", "hi"); err == nil {
		t.Fatalf("expected recipient error")
	}
	if _, err := messages.Append(ctx, "alice", "bob", "  "); err == nil {
		t.Fatalf("expected content error")
	}
}

func TestProjectStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	projects := repo.Projects()

	project, err := projects.Create(ctx, "alice", "Roadmap")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if project.ID == 0 {
		t.Fatalf("expected assigned id")
	}

	workflow, err := projects.AddWorkflow(ctx, "alice", project.ID, "Build")
	if err != nil {
		t.Fatalf("add workflow: %v", err)
	}
	task, err := projects.AddTask(ctx, "alice", project.ID, workflow.ID, "write docs")
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	if task.ID == 0 {
		t.Fatalf("expected task id")
	}

	got, found, err := projects.Get(ctx, "alice", project.ID)
	if err != nil || !found {
		t.Fatalf("get: %v found=%v", err, found)
	}
	if len(got.Workflows) != 1 || len(got.Workflows[0].Tasks) != 1 {
		t.Fatalf("unexpected project shape: %+v", got)
	}

	// Owner scoping: bob cannot see alice's project.
	_, found, err = projects.Get(ctx, "bob", project.ID)
	if err != nil {
		t.Fatalf("cross-owner get: %v", err)
	}
	if found {
		t.Fatalf("projects must be scoped to their owner")
	}

	if err := projects.Delete(ctx, "alice", project.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, err := projects.ListForOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list after delete, got %d", len(list))
	}
}

func TestProjectStoreWorkflowIDsNeverReused(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	projects := repo.Projects()

	project, err := projects.Create(ctx, "alice", "Roadmap")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	first, err := projects.AddWorkflow(ctx, "alice", project.ID, "one")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	// Remove the workflow through Update, then add another: the new id must
	// not repeat the removed one.
	if _, err := projects.Update(ctx, "alice", types.Project{ID: project.ID, Name: "Roadmap", Workflows: nil}); err != nil {
		t.Fatalf("update: %v", err)
	}
	second, err := projects.AddWorkflow(ctx, "alice", project.ID, "two")
	if err != nil {
		t.Fatalf("add second: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("workflow id %d was reused", second.ID)
	}
	if second.ID <= first.ID {
		t.Fatalf("expected ids to advance, got %d then %d", first.ID, second.ID)
	}
}

func TestProjectStoreUpdateMissing(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	projects := repo.Projects()

	if _, err := projects.Update(ctx, "alice", types.Project{ID: 42, Name: "ghost"}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
