package kafka

import (
	"context"

	"go.uber.org/fx"

	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
)

// StartConsumeMessages runs the consumer for the lifetime of the app.
// A consumer that dies on its own takes the process down with it.
func StartConsumeMessages(lc fx.Lifecycle, sd fx.Shutdowner, consumer Consumer) {
	log := logger.MustNamed("kafka")
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := consumer.Start(ctx); err != nil {
					log.Errorw("Kafka consumer stopped", "error", err)
					_ = sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			return consumer.Stop(stopCtx)
		},
	})
}
