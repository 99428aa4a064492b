package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
	assert.Equal(t, time.Second, cfg.Chat.TypingQuietPeriod)
	assert.Equal(t, 2000, cfg.Chat.MaxMessageLength)
	assert.Equal(t, 1500*time.Millisecond, cfg.Feedback.QuickDuration)
	assert.Equal(t, "memory", cfg.Settings.Backend)
	assert.Equal(t, []string{"localhost:27017"}, cfg.Database.Hosts)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoad_Env(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SETTINGS_BACKEND", "pebble")
	t.Setenv("CHAT_TYPING_QUIET_PERIOD", "3s")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SOCKET_BASE_URL", "http://gateway")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "pebble", cfg.Settings.Backend)
	assert.Equal(t, 3*time.Second, cfg.Chat.TypingQuietPeriod)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "http://gateway", cfg.Socket.BaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CHAT_PAGE_SIZE", "many")

	_, err := Load()
	assert.Error(t, err)
}
