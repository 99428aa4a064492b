package pebble

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble"
)

const keyPrefix = "settings:"

// SettingsStorage persists settings on local disk so they survive restarts.
type SettingsStorage struct {
	db *pebble.DB
}

func NewSettingsStorage(path string) (*SettingsStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return Open(path, &pebble.Options{})
}

// Open is NewSettingsStorage with caller-supplied options, e.g. an in-memory vfs.
func Open(path string, opts *pebble.Options) (*SettingsStorage, error) {
	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble %s: %w", path, err)
	}
	return &SettingsStorage{db: db}, nil
}

func (s *SettingsStorage) Load(ctx context.Context, key string) ([]byte, error) {
	v, closer, err := s.db.Get([]byte(keyPrefix + key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *SettingsStorage) Save(ctx context.Context, key string, data []byte) error {
	return s.db.Set([]byte(keyPrefix+key), data, pebble.Sync)
}

func (s *SettingsStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
