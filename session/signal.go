package session

import "sync"

// Signal is a single-topic refresh broadcaster scoped to the current
// session. Mutating operations call Notify; a view that wants to stay
// current subscribes and re-fetches on delivery. Pending deliveries coalesce
// (last write wins) and Reset drops anything pending, so a logout never
// leaks a stale refresh into the next session.
type Signal struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

// NewSignal creates an empty refresh signal.
func NewSignal() *Signal {
	return &Signal{subs: make(map[int]chan struct{})}
}

// Subscribe registers a subscriber. The returned channel receives at most
// one pending delivery at a time. The cancel function removes the
// subscription.
func (s *Signal) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
	return ch, cancel
}

// Notify signals every subscriber that a refresh is due. Never blocks: a
// subscriber with a delivery already pending keeps the single pending one.
func (s *Signal) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Reset drains pending deliveries from all subscribers. Called on logout so
// the next session starts clean.
func (s *Signal) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
	}
}
