package cache

// Subscription registers a view's interest in a set of keys. The listener
// runs synchronously on the goroutine that wrote the store, after the write.
type Subscription struct {
	store    *Store
	id       int
	keys     map[Key]struct{}
	listener func(Key)
	closed   bool
}

// Subscribe registers listener for the given keys. A nil listener is allowed
// for subscriptions that only exist to keep a poll alive.
func (s *Store) Subscribe(listener func(Key), keys ...Key) *Subscription {
	sub := &Subscription{
		store:    s,
		keys:     map[Key]struct{}{},
		listener: listener,
	}
	for _, key := range keys {
		sub.keys[key] = struct{}{}
	}
	s.mu.Lock()
	sub.id = s.nextSub
	s.nextSub++
	s.subs[sub.id] = sub
	s.mu.Unlock()
	return sub
}

// SetKeys replaces the subscription's interest set, e.g. when the selected
// conversation changes.
func (sub *Subscription) SetKeys(keys ...Key) {
	if sub == nil {
		return
	}
	sub.store.mu.Lock()
	sub.keys = map[Key]struct{}{}
	for _, key := range keys {
		sub.keys[key] = struct{}{}
	}
	sub.store.mu.Unlock()
}

func (sub *Subscription) Close() {
	if sub == nil {
		return
	}
	sub.store.mu.Lock()
	if !sub.closed {
		sub.closed = true
		delete(sub.store.subs, sub.id)
	}
	sub.store.mu.Unlock()
}

// Subscribed reports whether at least one live subscription covers key.
// Polling stops for unobserved keys.
func (s *Store) Subscribed(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		if _, ok := sub.keys[key]; ok {
			return true
		}
	}
	return false
}

func (s *Store) notify(key Key) {
	s.mu.Lock()
	var listeners []func(Key)
	for _, sub := range s.subs {
		if sub.listener == nil {
			continue
		}
		if _, ok := sub.keys[key]; ok {
			listeners = append(listeners, sub.listener)
		}
	}
	s.mu.Unlock()
	for _, fn := range listeners {
		fn(key)
	}
}
