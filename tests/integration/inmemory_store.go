package integration

import (
	"context"
	"sync"
)

// inMemorySnapshotStore is a mutex-guarded map implementing the snapshot
// store port. failSave and failLoad inject backend failures for degraded-mode
// scenarios that miniredis cannot simulate.
type inMemorySnapshotStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	failSave error
	failLoad error
}

func newInMemorySnapshotStore() *inMemorySnapshotStore {
	return &inMemorySnapshotStore{data: make(map[string][]byte)}
}

func (s *inMemorySnapshotStore) Save(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSave != nil {
		return s.failSave
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[key] = cp
	return nil
}

func (s *inMemorySnapshotStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad != nil {
		return nil, s.failLoad
	}
	value, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, nil
}

func (s *inMemorySnapshotStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *inMemorySnapshotStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string][]byte)
	return nil
}

func (s *inMemorySnapshotStore) setFailures(save, load error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSave = save
	s.failLoad = load
}
