package sync

import (
	"context"
	"testing"
	"time"

	"parley/internal/types"
)

// blockingBackend parks profile fetches until their context is cancelled.
type blockingBackend struct {
	fakeBackend
	unblocked chan struct{}
}

func (b *blockingBackend) GetCallerUserProfile(ctx context.Context) (*types.UserProfile, error) {
	<-ctx.Done()
	close(b.unblocked)
	return nil, ctx.Err()
}

func TestEngineCloseCancelsInflightFetch(t *testing.T) {
	fake := &blockingBackend{unblocked: make(chan struct{})}
	engine := NewEngine(fake, nil, EngineOptions{})

	engine.EnsureProfile()
	engine.Close()

	// Well before the per-fetch timeout: only the close can unblock it.
	select {
	case <-fake.unblocked:
	case <-time.After(2 * time.Second):
		t.Fatalf("in-flight fetch was not cancelled by close")
	}
}
