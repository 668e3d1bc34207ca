package cache

import (
	"sync"
	"time"
)

type Status int

const (
	StatusEmpty Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "empty"
	}
}

// Entry is the externally visible state of one key. A failed refresh keeps
// the last good Value; only Status and Err change.
type Entry struct {
	Status        Status
	Value         any
	Err           error
	Stale         bool
	LastFetchedAt time.Time
}

// HasValue reports whether a usable (possibly stale) value is present.
func (e Entry) HasValue() bool {
	return e.Value != nil
}

type entry struct {
	Entry
	hasEverLoaded bool
}

// Store is the single shared mutable structure of the engine. It owns every
// cached entity value; the runners are its only writers. Subscribers are
// notified synchronously after each write.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	subs    map[int]*Subscription
	nextSub int
}

func NewStore() *Store {
	return &Store{
		entries: map[Key]*entry{},
		subs:    map[int]*Subscription{},
	}
}

// Get returns the current entry for key; a never-fetched key reads as empty.
func (s *Store) Get(key Key) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return Entry{Status: StatusEmpty}
	}
	return e.Entry
}

// MarkLoading flags the key as fetching. A key with a prior value keeps it
// while loading (stale-while-revalidate).
func (s *Store) MarkLoading(key Key) {
	s.mu.Lock()
	e := s.ensure(key)
	if !e.hasEverLoaded {
		e.Status = StatusLoading
	}
	s.mu.Unlock()
	s.notify(key)
}

// Set replaces the full value for key. Partial writes do not exist: a fetch
// either lands here whole or not at all.
func (s *Store) Set(key Key, value any) {
	s.mu.Lock()
	e := s.ensure(key)
	e.Status = StatusReady
	e.Value = value
	e.Err = nil
	e.Stale = false
	e.LastFetchedAt = time.Now()
	e.hasEverLoaded = true
	s.mu.Unlock()
	s.notify(key)
}

// Fail records a fetch failure. The prior value, if any, is left untouched.
func (s *Store) Fail(key Key, err error) {
	s.mu.Lock()
	e := s.ensure(key)
	e.Status = StatusError
	e.Err = err
	s.mu.Unlock()
	s.notify(key)
}

// MarkStale invalidates a single key so the next Ensure refetches it.
func (s *Store) MarkStale(key Key) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok {
		e.Stale = true
	}
	s.mu.Unlock()
	if ok {
		s.notify(key)
	}
}

// MarkStalePrefix invalidates every key of the given kind.
func (s *Store) MarkStalePrefix(kind Kind) {
	s.mu.Lock()
	var changed []Key
	for key, e := range s.entries {
		if key.Kind == kind {
			e.Stale = true
			changed = append(changed, key)
		}
	}
	s.mu.Unlock()
	for _, key := range changed {
		s.notify(key)
	}
}

// Reset drops every entry. Used at sign-out; the cache is a disposable
// projection of backend state.
func (s *Store) Reset() {
	s.mu.Lock()
	s.entries = map[Key]*entry{}
	s.mu.Unlock()
}

func (s *Store) ensure(key Key) *entry {
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	return e
}
