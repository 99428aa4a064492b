package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig       `envPrefix:"SERVER_"`
	Log          LogConfig          `envPrefix:"LOG_"`
	Session      SessionConfig      `envPrefix:"SESSION_"`
	Chat         ChatConfig         `envPrefix:"CHAT_"`
	Feedback     FeedbackConfig     `envPrefix:"FEEDBACK_"`
	Notification NotificationConfig `envPrefix:"NOTIFICATION_"`
	Settings     SettingsConfig     `envPrefix:"SETTINGS_"`
	Database     DatabaseConfig     `envPrefix:"DATABASE_"`
	Redis        RedisConfig        `envPrefix:"REDIS_"`
	Socket       SocketConfig       `envPrefix:"SOCKET_"`
	Kafka        KafkaConfig        `envPrefix:"KAFKA_"`
}

type ServerConfig struct {
	Addr        string `env:"ADDR" envDefault:"0.0.0.0:8080"`
	CORSPattern string `env:"CORS_PATTERN" envDefault:"^https?://localhost(:[0-9]+)?$"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// SessionConfig identifies the user whose device receives delivery cues
// and social notifications.
type SessionConfig struct {
	UserID string `env:"USER_ID"`
}

type ChatConfig struct {
	TypingQuietPeriod time.Duration `env:"TYPING_QUIET_PERIOD" envDefault:"1s"`
	MaxMessageLength  int           `env:"MAX_MESSAGE_LENGTH" envDefault:"2000"`
	PageSize          int           `env:"PAGE_SIZE" envDefault:"50"`
}

type FeedbackConfig struct {
	QuickDuration    time.Duration `env:"QUICK_DURATION" envDefault:"1500ms"`
	DefaultPosition  string        `env:"DEFAULT_POSITION" envDefault:"top-right"`
	DefaultAnimation string        `env:"DEFAULT_ANIMATION" envDefault:"slide"`
}

type NotificationConfig struct {
	EvictionPolicy string `env:"EVICTION_POLICY" envDefault:"preserve_unread"`
}

type SettingsConfig struct {
	Backend    string `env:"BACKEND" envDefault:"memory"`
	StorageKey string `env:"STORAGE_KEY" envDefault:"feedback-settings"`
	PebblePath string `env:"PEBBLE_PATH" envDefault:"./data/settings"`
}

type DatabaseConfig struct {
	Hosts      []string `env:"HOSTS" envDefault:"localhost:27017" envSeparator:","`
	Direct     bool     `env:"DIRECT" envDefault:"false"`
	Database   string   `env:"DATABASE" envDefault:"community"`
	Username   string   `env:"USERNAME"`
	Password   string   `env:"PASSWORD"`
	AuthDB     string   `env:"AUTH_DB" envDefault:"admin"`
	Collection string   `env:"COLLECTION" envDefault:"settings"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type SocketConfig struct {
	BaseURL                      string `env:"BASE_URL"`
	Platform                     string `env:"PLATFORM" envDefault:"web"`
	Workers                      int    `env:"WORKERS" envDefault:"4"`
	AudioEnabled                 bool   `env:"AUDIO_ENABLED" envDefault:"true"`
	HapticEnabled                bool   `env:"HAPTIC_ENABLED" envDefault:"true"`
	SystemNotificationPermission string `env:"SYSTEM_NOTIFICATION_PERMISSION" envDefault:"default"`
}

type KafkaConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Brokers []string `env:"BROKERS" envDefault:"localhost:9092" envSeparator:","`
	Topic   string   `env:"TOPIC" envDefault:"community.realtime.events"`
	GroupID string   `env:"GROUP_ID" envDefault:"community-realtime"`
	Workers int      `env:"WORKERS" envDefault:"4"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
