package ephemeris

import (
	"sync"
	"time"
)

// Store is an in-memory, thread-safe holder for the most recent TLE
// set. The server refreshes it in the background while search requests
// snapshot from it concurrently; the proximity core itself stays
// stateless.
type Store struct {
	mu        sync.RWMutex
	tles      []TLE
	updatedAt time.Time

	subs []func(int)
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{}
}

// Replace swaps in a freshly fetched TLE set and notifies subscribers
// with the new element count.
func (s *Store) Replace(tles []TLE, fetchedAt time.Time) {
	s.mu.Lock()
	s.tles = append([]TLE(nil), tles...)
	s.updatedAt = fetchedAt.UTC()
	subs := append(([]func(int))(nil), s.subs...)
	n := len(s.tles)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(n)
	}
}

// List returns a snapshot copy of the current TLE set.
func (s *Store) List() []TLE {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]TLE(nil), s.tles...)
}

// Len reports the number of stored element sets.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tles)
}

// UpdatedAt reports when the set was last replaced; zero until the
// first fetch succeeds.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Subscribe registers a callback invoked after every Replace with the
// new set size.
func (s *Store) Subscribe(fn func(count int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}
