package ratelimit

import "sync"

// MemoryStore keeps rate-limit records in a process-wide map. It is
// best-effort and not durable across restarts. The mutex only protects the
// map itself; the check/increment race documented on Limiter remains.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Get(identity string) (Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[identity]
	return rec, ok, nil
}

func (s *MemoryStore) Set(identity string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[identity] = rec
	return nil
}
