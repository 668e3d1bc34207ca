package sync

import (
	"context"
	"sync"
	"time"

	"parley/internal/cache"
	"parley/internal/logging"
)

// FetchFunc loads the authoritative value for one key.
type FetchFunc func(ctx context.Context) (any, error)

type Options struct {
	// StaleTime is how long a successful fetch stays fresh; Ensure calls
	// inside the window do not refetch.
	StaleTime time.Duration
	// PollInterval, when set, reschedules a fetch after every completion for
	// as long as the key has a live subscription.
	PollInterval time.Duration
}

type flight struct {
	generation uint64
}

// Runner issues fetches for entity keys. One in-flight fetch per key at most
// (request coalescing); a completion only writes the store when it still
// carries the key's current generation, so a late out-of-order response can
// never clobber fresher data.
type Runner struct {
	store *cache.Store
	log   logging.Logger

	mu          sync.Mutex
	generations map[cache.Key]uint64
	inflight    map[cache.Key]*flight
	polls       map[cache.Key]*time.Timer
	closed      bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewRunner(store *cache.Store, log logging.Logger) *Runner {
	if log == nil {
		log = logging.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		store:       store,
		log:         log,
		generations: map[cache.Key]uint64{},
		inflight:    map[cache.Key]*flight{},
		polls:       map[cache.Key]*time.Timer{},
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (r *Runner) Store() *cache.Store {
	return r.store
}

// Ensure returns the current (possibly stale) entry immediately and starts a
// fetch when the entry is empty, errored, stale, or past its stale time.
// Concurrent callers for the same key share one in-flight fetch.
func (r *Runner) Ensure(key cache.Key, fetch FetchFunc, opts Options) cache.Entry {
	entry := r.store.Get(key)
	if !r.needsFetch(entry, opts) {
		return entry
	}

	r.mu.Lock()
	if r.closed || r.inflight[key] != nil {
		r.mu.Unlock()
		return entry
	}
	gen := r.generations[key] + 1
	r.generations[key] = gen
	r.inflight[key] = &flight{generation: gen}
	r.mu.Unlock()

	r.store.MarkLoading(key)
	go r.run(key, gen, fetch, opts)
	return entry
}

func (r *Runner) needsFetch(entry cache.Entry, opts Options) bool {
	if entry.Stale {
		return true
	}
	switch entry.Status {
	case cache.StatusReady:
		return opts.StaleTime <= 0 || time.Since(entry.LastFetchedAt) >= opts.StaleTime
	case cache.StatusLoading:
		return false
	default:
		return true
	}
}

func (r *Runner) run(key cache.Key, gen uint64, fetch FetchFunc, opts Options) {
	value, err := fetch(r.ctx)

	r.mu.Lock()
	current := r.generations[key] == gen
	if current {
		delete(r.inflight, key)
	}
	closed := r.closed
	r.mu.Unlock()

	if closed {
		return
	}
	if !current {
		// A newer fetch superseded this one while it was on the wire.
		r.log.Debug("stale fetch discarded", logging.F("key", key.String()))
	} else if err != nil {
		r.log.Warn("fetch failed", logging.F("key", key.String()), logging.F("err", err.Error()))
		r.store.Fail(key, err)
	} else {
		r.store.Set(key, value)
	}

	if current && opts.PollInterval > 0 {
		r.schedulePoll(key, fetch, opts)
	}
}

func (r *Runner) schedulePoll(key cache.Key, fetch FetchFunc, opts Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.polls[key] != nil {
		return
	}
	r.polls[key] = time.AfterFunc(opts.PollInterval, func() {
		r.mu.Lock()
		delete(r.polls, key)
		closed := r.closed
		r.mu.Unlock()
		if closed {
			return
		}
		// No background work for unobserved keys.
		if !r.store.Subscribed(key) {
			return
		}
		r.store.MarkStale(key)
		r.Ensure(key, fetch, opts)
	})
}

// Invalidate marks the keys stale and abandons any in-flight fetch for them:
// the generation bump means a pending response will be discarded on arrival.
func (r *Runner) Invalidate(keys ...cache.Key) {
	for _, key := range keys {
		r.mu.Lock()
		r.generations[key]++
		delete(r.inflight, key)
		r.mu.Unlock()
		r.store.MarkStale(key)
	}
}

// InvalidateKind bulk-invalidates every cached key of one kind.
func (r *Runner) InvalidateKind(kind cache.Kind) {
	r.mu.Lock()
	for key := range r.generations {
		if key.Kind == kind {
			r.generations[key]++
			delete(r.inflight, key)
		}
	}
	r.mu.Unlock()
	r.store.MarkStalePrefix(kind)
}

// Close tears the runner down at sign-out. In-flight fetches are cancelled
// via the runner context and their results discarded.
func (r *Runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for key, timer := range r.polls {
		timer.Stop()
		delete(r.polls, key)
	}
	r.mu.Unlock()
	r.cancel()
}
