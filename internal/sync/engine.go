package sync

import (
	"context"
	"time"

	"parley/internal/cache"
	"parley/internal/logging"
	"parley/internal/types"
)

const (
	profileStaleTime      = 30 * time.Second
	directoryStaleTime    = 30 * time.Second
	projectStaleTime      = 10 * time.Second
	conversationStaleTime = 4 * time.Second
	defaultPollInterval   = 5 * time.Second
	fetchTimeout          = 8 * time.Second
)

// Engine bundles the store, query runner and mutation runner for one
// session. It is created after identity resolves and torn down at sign-out.
type Engine struct {
	store        *cache.Store
	runner       *Runner
	mutator      *Mutator
	backend      Backend
	pollInterval time.Duration
}

type EngineOptions struct {
	// PollInterval overrides the live-key refetch cadence. Zero keeps the
	// default of 5s.
	PollInterval time.Duration
}

func NewEngine(b Backend, log logging.Logger, opts EngineOptions) *Engine {
	store := cache.NewStore()
	runner := NewRunner(store, log)
	interval := opts.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Engine{
		store:        store,
		runner:       runner,
		mutator:      NewMutator(b, runner, log),
		backend:      b,
		pollInterval: interval,
	}
}

func (e *Engine) Store() *cache.Store { return e.store }
func (e *Engine) Runner() *Runner     { return e.runner }
func (e *Engine) Mutator() *Mutator   { return e.mutator }

func (e *Engine) Close() {
	e.runner.Close()
	e.store.Reset()
}

// fetchCtx bounds one fetch. Deriving from the runner's context means
// closing the engine cancels in-flight calls instead of just discarding
// their results.
func fetchCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, fetchTimeout)
}

// EnsureProfile keeps the caller's profile key warm.
func (e *Engine) EnsureProfile() cache.Entry {
	return e.runner.Ensure(cache.ProfileKey(), func(ctx context.Context) (any, error) {
		ctx, cancel := fetchCtx(ctx)
		defer cancel()
		return e.backend.GetCallerUserProfile(ctx)
	}, Options{StaleTime: profileStaleTime})
}

func (e *Engine) EnsureUsers() cache.Entry {
	return e.runner.Ensure(cache.UsersKey(), func(ctx context.Context) (any, error) {
		ctx, cancel := fetchCtx(ctx)
		defer cancel()
		return e.backend.ListUsers(ctx)
	}, Options{StaleTime: directoryStaleTime})
}

// EnsureConversations is a live key: it polls while subscribed so message
// delivery approximates real time without a push channel.
func (e *Engine) EnsureConversations() cache.Entry {
	return e.runner.Ensure(cache.ConversationsKey(), func(ctx context.Context) (any, error) {
		ctx, cancel := fetchCtx(ctx)
		defer cancel()
		return e.backend.ListConversations(ctx)
	}, Options{StaleTime: conversationStaleTime, PollInterval: e.pollInterval})
}

// EnsureConversation is the open thread for one peer, also a live key.
func (e *Engine) EnsureConversation(peer string) cache.Entry {
	return e.runner.Ensure(cache.ConversationKey(peer), func(ctx context.Context) (any, error) {
		ctx, cancel := fetchCtx(ctx)
		defer cancel()
		return e.backend.GetConversation(ctx, peer)
	}, Options{StaleTime: conversationStaleTime, PollInterval: e.pollInterval})
}

func (e *Engine) EnsureProjects() cache.Entry {
	return e.runner.Ensure(cache.ProjectsKey(), func(ctx context.Context) (any, error) {
		ctx, cancel := fetchCtx(ctx)
		defer cancel()
		return e.backend.GetProjects(ctx)
	}, Options{StaleTime: projectStaleTime})
}

func (e *Engine) EnsureProject(id uint64) cache.Entry {
	return e.runner.Ensure(cache.ProjectKey(id), func(ctx context.Context) (any, error) {
		ctx, cancel := fetchCtx(ctx)
		defer cancel()
		return e.backend.GetProject(ctx, id)
	}, Options{StaleTime: projectStaleTime})
}

func (e *Engine) EnsureRole() cache.Entry {
	return e.runner.Ensure(cache.RoleKey(), func(ctx context.Context) (any, error) {
		ctx, cancel := fetchCtx(ctx)
		defer cancel()
		return e.backend.GetCallerUserRole(ctx)
	}, Options{StaleTime: profileStaleTime})
}

// Typed snapshot accessors. Each re-derives from the store on every call;
// callers never hold references into cached state.

func (e *Engine) Profile() (*types.UserProfile, cache.Entry) {
	entry := e.store.Get(cache.ProfileKey())
	profile, _ := entry.Value.(*types.UserProfile)
	return profile, entry
}

func (e *Engine) Role() (types.UserRole, cache.Entry) {
	entry := e.store.Get(cache.RoleKey())
	role, _ := entry.Value.(types.UserRole)
	return role, entry
}

func (e *Engine) Users() ([]types.ChatUser, cache.Entry) {
	entry := e.store.Get(cache.UsersKey())
	users, _ := entry.Value.([]types.ChatUser)
	return users, entry
}

func (e *Engine) Conversations() ([]types.Conversation, cache.Entry) {
	entry := e.store.Get(cache.ConversationsKey())
	conversations, _ := entry.Value.([]types.Conversation)
	return conversations, entry
}

func (e *Engine) Conversation(peer string) ([]types.Message, cache.Entry) {
	entry := e.store.Get(cache.ConversationKey(peer))
	messages, _ := entry.Value.([]types.Message)
	return messages, entry
}

func (e *Engine) Projects() ([]types.Project, cache.Entry) {
	entry := e.store.Get(cache.ProjectsKey())
	projects, _ := entry.Value.([]types.Project)
	return projects, entry
}

func (e *Engine) Project(id uint64) (*types.Project, cache.Entry) {
	entry := e.store.Get(cache.ProjectKey(id))
	project, _ := entry.Value.(*types.Project)
	return project, entry
}
