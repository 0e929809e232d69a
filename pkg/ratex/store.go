package ratex

import "sync"

// Store owns the per-key request logs. The limiter funnels every mutation
// through Update so that prune-check-append stays a single critical section
// per key; nothing else writes rate-limit state.
type Store interface {
	// Update runs fn with exclusive access to the timestamp log (unix ms,
	// oldest first) for key. The returned slice replaces the log; returning
	// an empty slice evicts the key from the store.
	Update(key string, fn func(timestamps []int64) []int64)

	// Len reports the number of tracked keys.
	Len() int

	// Sweep evicts keys whose newest timestamp is at or before cutoff
	// (unix ms). Used by periodic housekeeping to bound idle-key growth.
	Sweep(cutoff int64)
}

// MemoryStore is the in-process Store. Each key gets its own lock so
// distinct identities never contend with each other.
type MemoryStore struct {
	entries sync.Map // map[string]*entry
}

type entry struct {
	mu sync.Mutex
	ts []int64

	// evicted marks an entry removed from the map while another goroutine
	// may still hold a stale pointer to it; such holders must reload.
	evicted bool
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Update implements Store.
func (s *MemoryStore) Update(key string, fn func(timestamps []int64) []int64) {
	for {
		value, _ := s.entries.LoadOrStore(key, &entry{})
		e := value.(*entry)

		e.mu.Lock()
		if e.evicted {
			e.mu.Unlock()
			continue
		}

		e.ts = fn(e.ts)
		if len(e.ts) == 0 {
			e.evicted = true
			s.entries.Delete(key)
		}
		e.mu.Unlock()
		return
	}
}

// Len implements Store.
func (s *MemoryStore) Len() int {
	n := 0
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Sweep implements Store.
func (s *MemoryStore) Sweep(cutoff int64) {
	s.entries.Range(func(key, value any) bool {
		e := value.(*entry)

		e.mu.Lock()
		if !e.evicted && (len(e.ts) == 0 || e.ts[len(e.ts)-1] <= cutoff) {
			e.evicted = true
			s.entries.Delete(key)
		}
		e.mu.Unlock()
		return true
	})
}
