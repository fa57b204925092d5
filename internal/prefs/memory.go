package prefs

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. Used in tests and as the fallback when
// the API runs without a database.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (s *MemoryStore) GetString(_ context.Context, key, def string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key]; ok {
		return v
	}
	return def
}

func (s *MemoryStore) GetInt(ctx context.Context, key string, def int) int {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return def
	}
	return parseInt(key, raw, def)
}

func (s *MemoryStore) GetFloat(ctx context.Context, key string, def float64) float64 {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return def
	}
	return parseFloat(key, raw, def)
}

func (s *MemoryStore) PutString(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) PutInt(ctx context.Context, key string, value int) error {
	return s.PutString(ctx, key, FormatInt(value))
}

func (s *MemoryStore) PutFloat(ctx context.Context, key string, value float64) error {
	return s.PutString(ctx, key, FormatFloat(value))
}

func (s *MemoryStore) PutAll(_ context.Context, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range values {
		s.values[k] = v
	}
	return nil
}
