package app

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	"github.com/nguyentranbao-ct/community-realtime/internal/kafka"
	"github.com/nguyentranbao-ct/community-realtime/internal/repo/socket"
	"github.com/nguyentranbao-ct/community-realtime/internal/server"
	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
)

// Invoke builds the application graph and runs funcs against it.
func Invoke(funcs ...any) *fx.App {
	conf := config.MustLoad()
	if err := logger.Init(conf.Log.Level, conf.Log.Format); err != nil {
		panic(err)
	}
	log := logger.MustNamed("app")
	log.Debugw("config loaded",
		"addr", conf.Server.Addr,
		"settings_backend", conf.Settings.Backend,
		"kafka_enabled", conf.Kafka.Enabled,
		"socket_gateway", conf.Socket.BaseURL,
	)

	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: logger.Get().Named("fx"),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		Options(conf),
		fx.Invoke(funcs...),
	)
}

// Options is the provider graph without the process-level logger.
func Options(conf *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(conf),
		fx.Provide(
			newClock,
			newSettingsStorage,

			socket.NewClient,
			newBroadcaster,

			newPresenceRegistry,
			newRoomStore,
			newSettingsUseCase,
			newDeliveryUseCase,
			newFeedbackUseCase,
			newNotificationUseCase,
			newChatUseCase,

			server.NewPresenceController,
			server.NewChatController,
			server.NewFeedbackController,
			server.NewNotificationController,
			server.NewSettingsController,
			server.NewEcho,

			newEventHandler,
			kafka.NewConsumer,
		),
	)
}
