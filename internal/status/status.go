// Package status carries human-readable progress messages from long-running
// grading calls to whoever is watching. Callers pass a Sink; when they don't,
// messages land in the process-wide Default store.
package status

import "sync"

// Update is a single progress message. Percent is -1 when the stage has no
// meaningful completion estimate.
type Update struct {
	Message string `json:"message"`
	Percent int    `json:"percent"`
}

// Sink receives progress updates. Implementations must be safe for
// concurrent use since agents report from their own goroutines.
type Sink func(Update)

// Store holds the latest status message and fans it out to subscribers.
type Store struct {
	mu      sync.RWMutex
	current Update
	subs    map[int]Sink
	nextID  int
}

// Default is the fallback store used when no sink is supplied.
var Default = NewStore()

// NewStore creates a store in the READY state.
func NewStore() *Store {
	return &Store{
		current: Update{Message: "READY", Percent: -1},
		subs:    make(map[int]Sink),
	}
}

// Set records u as the current status and notifies subscribers.
func (s *Store) Set(u Update) {
	s.mu.Lock()
	s.current = u
	subs := make([]Sink, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(u)
	}
}

// Current returns the most recent update.
func (s *Store) Current() Update {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers fn for future updates and returns a function that
// removes the subscription.
func (s *Store) Subscribe(fn Sink) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Report delivers msg to sink, or to Default if sink is nil.
func Report(sink Sink, msg string, percent int) {
	u := Update{Message: msg, Percent: percent}
	if sink != nil {
		sink(u)
		return
	}
	Default.Set(u)
}
