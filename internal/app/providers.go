package app

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	"github.com/nguyentranbao-ct/community-realtime/internal/kafka"
	"github.com/nguyentranbao-ct/community-realtime/internal/repo/memory"
	"github.com/nguyentranbao-ct/community-realtime/internal/repo/mongodb"
	"github.com/nguyentranbao-ct/community-realtime/internal/repo/pebble"
	"github.com/nguyentranbao-ct/community-realtime/internal/repo/redis"
	"github.com/nguyentranbao-ct/community-realtime/internal/repo/socket"
	"github.com/nguyentranbao-ct/community-realtime/internal/usecase"
	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
)

const (
	BackendMemory  = "memory"
	BackendPebble  = "pebble"
	BackendMongoDB = "mongodb"
	BackendRedis   = "redis"
)

func newClock() clock.Clock {
	return clock.New()
}

func newSettingsStorage(lc fx.Lifecycle, conf *config.Config) (usecase.SettingsStorage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch conf.Settings.Backend {
	case BackendMemory, "":
		return memory.NewSettingsStorage(), nil

	case BackendPebble:
		store, err := pebble.NewSettingsStorage(conf.Settings.PebblePath)
		if err != nil {
			return nil, fmt.Errorf("open pebble settings: %w", err)
		}
		lc.Append(fx.StopHook(store.Close))
		return store, nil

	case BackendMongoDB:
		db, err := mongodb.NewConnection(ctx, conf.Database)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.StopHook(db.Close))
		return mongodb.NewSettingsStorage(db, conf.Database.Collection), nil

	case BackendRedis:
		client, err := redis.NewClient(ctx, conf.Redis)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.StopHook(client.Close))
		return redis.NewSettingsStorage(client), nil
	}
	return nil, fmt.Errorf("unknown settings backend %q", conf.Settings.Backend)
}

func newBroadcaster(lc fx.Lifecycle, conf *config.Config, client *socket.Client) *socket.Broadcaster {
	b := socket.NewBroadcaster(conf, client)
	lc.Append(fx.StopHook(b.Close))
	return b
}

func newPresenceRegistry(lc fx.Lifecycle, conf *config.Config, clk clock.Clock) *usecase.PresenceRegistry {
	r := usecase.NewPresenceRegistry(clk, conf.Chat.TypingQuietPeriod)
	lc.Append(fx.StopHook(r.Close))
	return r
}

func newRoomStore(conf *config.Config, presence *usecase.PresenceRegistry) usecase.RoomStore {
	return memory.NewRoomStore(conf, presence)
}

// newSettingsUseCase loads persisted settings on start. A storage that
// cannot be read leaves the defaults in place.
func newSettingsUseCase(lc fx.Lifecycle, conf *config.Config, storage usecase.SettingsStorage) *usecase.SettingsUseCase {
	uc := usecase.NewSettingsUseCase(conf, storage)
	lc.Append(fx.StartHook(func(ctx context.Context) {
		if err := uc.Load(ctx); err != nil {
			logger.MustNamed("app").Warnw("Using default settings", "error", err)
		}
	}))
	return uc
}

func newDeliveryUseCase(
	lc fx.Lifecycle,
	conf *config.Config,
	settings *usecase.SettingsUseCase,
	client *socket.Client,
) *usecase.DeliveryUseCase {
	uc := usecase.NewDeliveryUseCase(conf, settings,
		socket.NewAudioBackend(conf, client),
		socket.NewHapticBackend(conf, client),
		socket.NewSystemNotifier(conf, client),
	)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			uc.Init(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			uc.Close()
			return nil
		},
	})
	return uc
}

func newFeedbackUseCase(
	lc fx.Lifecycle,
	conf *config.Config,
	clk clock.Clock,
	settings *usecase.SettingsUseCase,
	delivery *usecase.DeliveryUseCase,
) *usecase.FeedbackUseCase {
	uc := usecase.NewFeedbackUseCase(conf, clk, settings, delivery)
	lc.Append(fx.StopHook(uc.Close))
	return uc
}

func newNotificationUseCase(
	conf *config.Config,
	clk clock.Clock,
	settings *usecase.SettingsUseCase,
	delivery *usecase.DeliveryUseCase,
) *usecase.NotificationUseCase {
	return usecase.NewNotificationUseCase(conf, clk, settings, delivery)
}

func newChatUseCase(
	lc fx.Lifecycle,
	conf *config.Config,
	clk clock.Clock,
	rooms usecase.RoomStore,
	presence *usecase.PresenceRegistry,
	broadcaster *socket.Broadcaster,
	notifications *usecase.NotificationUseCase,
) *usecase.ChatUseCase {
	uc := usecase.NewChatUseCase(conf, clk, rooms, presence, broadcaster,
		usecase.NewChatNotifier(conf, notifications, presence))
	lc.Append(fx.StopHook(uc.Close))
	return uc
}

func newEventHandler(
	presence *usecase.PresenceRegistry,
	chat *usecase.ChatUseCase,
	notifications *usecase.NotificationUseCase,
) kafka.EventHandler {
	return kafka.NewEventHandler(presence, chat, notifications)
}
