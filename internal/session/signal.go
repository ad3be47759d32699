package session

import "sync"

// signal is the store-scoped observer list. Subscribers are notified after
// every successful mutation, never on failure. It replaces the ambient
// update events of earlier revisions: subscriptions live and die with the
// session, nothing is process-wide.
type signal struct {
	mu   sync.Mutex
	subs map[int]func()
	next int
}

// subscribe registers fn and returns a cancel function.
func (s *signal) subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subs == nil {
		s.subs = make(map[int]func())
	}
	id := s.next
	s.next++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// notify invokes all current subscribers.
func (s *signal) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
