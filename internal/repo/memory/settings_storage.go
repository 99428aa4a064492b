package memory

import (
	"context"
	"slices"
	"sync"
)

// SettingsStorage keeps serialized settings for the lifetime of the process.
type SettingsStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewSettingsStorage() *SettingsStorage {
	return &SettingsStorage{data: make(map[string][]byte)}
}

func (s *SettingsStorage) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	return slices.Clone(data), nil
}

func (s *SettingsStorage) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = slices.Clone(data)
	return nil
}
