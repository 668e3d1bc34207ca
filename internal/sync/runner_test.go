package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"parley/internal/cache"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestRunnerFetchAndFreshness(t *testing.T) {
	store := cache.NewStore()
	runner := NewRunner(store, nil)
	defer runner.Close()
	key := cache.UsersKey()

	var calls atomic.Int64
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "users", nil
	}
	opts := Options{StaleTime: time.Hour}

	entry := runner.Ensure(key, fetch, opts)
	if entry.Status != cache.StatusEmpty {
		t.Fatalf("first Ensure should observe the pre-fetch entry, got %v", entry.Status)
	}
	waitFor(t, "fetch to land", func() bool {
		return store.Get(key).Status == cache.StatusReady
	})

	// Fresh inside the stale window: no second fetch.
	entry = runner.Ensure(key, fetch, opts)
	if entry.Value != "users" {
		t.Fatalf("expected cached value, got %v", entry.Value)
	}
	time.Sleep(20 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected 1 fetch, got %d", got)
	}
}

func TestRunnerCoalescesConcurrentEnsures(t *testing.T) {
	store := cache.NewStore()
	runner := NewRunner(store, nil)
	defer runner.Close()
	key := cache.ConversationsKey()

	var calls atomic.Int64
	release := make(chan struct{})
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-release
		return "v", nil
	}

	for i := 0; i < 5; i++ {
		runner.Ensure(key, fetch, Options{})
	}
	close(release)
	waitFor(t, "coalesced fetch to land", func() bool {
		return store.Get(key).Status == cache.StatusReady
	})
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one in-flight fetch, got %d", got)
	}
}

func TestRunnerDiscardsSupersededResponse(t *testing.T) {
	store := cache.NewStore()
	runner := NewRunner(store, nil)
	defer runner.Close()
	key := cache.ConversationKey("alice")

	releaseOld := make(chan struct{})
	oldFetch := func(ctx context.Context) (any, error) {
		<-releaseOld
		return "old", nil
	}
	newFetch := func(ctx context.Context) (any, error) {
		return "new", nil
	}

	runner.Ensure(key, oldFetch, Options{})
	// Invalidation abandons the in-flight fetch and admits a new one.
	runner.Invalidate(key)
	runner.Ensure(key, newFetch, Options{})
	waitFor(t, "replacement fetch to land", func() bool {
		entry := store.Get(key)
		return entry.Status == cache.StatusReady && entry.Value == "new"
	})

	// The superseded response arrives late and must not clobber the store.
	close(releaseOld)
	time.Sleep(50 * time.Millisecond)
	if got := store.Get(key).Value; got != "new" {
		t.Fatalf("late response overwrote fresh data: %v", got)
	}
}

func TestRunnerFailureKeepsStaleValue(t *testing.T) {
	store := cache.NewStore()
	runner := NewRunner(store, nil)
	defer runner.Close()
	key := cache.ProjectsKey()

	runner.Ensure(key, func(ctx context.Context) (any, error) {
		return "good", nil
	}, Options{})
	waitFor(t, "initial fetch", func() bool {
		return store.Get(key).Status == cache.StatusReady
	})

	runner.Invalidate(key)
	runner.Ensure(key, func(ctx context.Context) (any, error) {
		return nil, errors.New("backend down")
	}, Options{})
	waitFor(t, "failed refetch", func() bool {
		return store.Get(key).Status == cache.StatusError
	})

	entry := store.Get(key)
	if entry.Value != "good" {
		t.Fatalf("expected stale value to survive failure, got %v", entry.Value)
	}
}

func TestRunnerPollsOnlyWhileSubscribed(t *testing.T) {
	store := cache.NewStore()
	runner := NewRunner(store, nil)
	defer runner.Close()
	key := cache.ConversationsKey()

	sub := store.Subscribe(nil, key)

	var calls atomic.Int64
	fetch := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "v", nil
	}
	opts := Options{PollInterval: 10 * time.Millisecond}

	runner.Ensure(key, fetch, opts)
	waitFor(t, "poll refetches", func() bool {
		return calls.Load() >= 3
	})

	sub.Close()
	time.Sleep(50 * time.Millisecond)
	after := calls.Load()
	time.Sleep(100 * time.Millisecond)
	if calls.Load() != after {
		t.Fatalf("poll kept running after unsubscribe: %d -> %d", after, calls.Load())
	}
}

func TestRunnerCloseDiscardsResults(t *testing.T) {
	store := cache.NewStore()
	runner := NewRunner(store, nil)
	key := cache.ProfileKey()

	release := make(chan struct{})
	runner.Ensure(key, func(ctx context.Context) (any, error) {
		<-release
		return "late", nil
	}, Options{})

	runner.Close()
	close(release)
	time.Sleep(20 * time.Millisecond)
	if got := store.Get(key).Value; got == "late" {
		t.Fatalf("result written after close")
	}
}
