package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
)

func NewClient(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// SettingsStorage keeps settings in a shared redis so several processes see the same preferences.
type SettingsStorage struct {
	client goredis.Cmdable
}

func NewSettingsStorage(client goredis.Cmdable) *SettingsStorage {
	return &SettingsStorage{client: client}
}

func settingsKey(key string) string {
	return fmt.Sprintf("community:settings:%s", key)
}

func (s *SettingsStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, settingsKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *SettingsStorage) Save(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, settingsKey(key), data, 0).Err()
}
