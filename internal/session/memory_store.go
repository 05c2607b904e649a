package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	raw     []byte
	expires time.Time
}

// MemoryStore is a process-local store for development and tests. Entries
// are serialised so callers never share mutable state.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*Data, error) {
	s.mu.Lock()
	entry, ok := s.entries[id]
	if ok && !entry.expires.IsZero() && s.now().After(entry.expires) {
		delete(s.entries, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	var data Data
	if err := json.Unmarshal(entry.raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, data *Data, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	entry := memoryEntry{raw: raw}
	if ttl > 0 {
		entry.expires = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[id] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}
