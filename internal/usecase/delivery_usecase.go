package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammazero/workerpool"
	"go.uber.org/zap"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
)

const deliveryTimeout = 5 * time.Second

type Dispatcher func(task func())

type DeliveryOption func(*DeliveryUseCase)

// WithDispatcher replaces the worker pool, e.g. with a synchronous runner in tests.
func WithDispatcher(d Dispatcher) DeliveryOption {
	return func(uc *DeliveryUseCase) {
		uc.dispatch = d
	}
}

// DeliveryUseCase plays audio, haptic and system cues. Every call returns
// immediately; failures are logged and counted, never surfaced.
type DeliveryUseCase struct {
	settings   SettingsReader
	audio      AudioBackend
	haptic     HapticBackend
	system     SystemNotifier
	pool       *workerpool.WorkerPool
	dispatch   Dispatcher
	initOnce   sync.Once
	permission atomic.Value
	log        *zap.SugaredLogger
}

func NewDeliveryUseCase(
	cfg *config.Config,
	settings SettingsReader,
	audio AudioBackend,
	haptic HapticBackend,
	system SystemNotifier,
	opts ...DeliveryOption,
) *DeliveryUseCase {
	uc := &DeliveryUseCase{
		settings: settings,
		audio:    audio,
		haptic:   haptic,
		system:   system,
		log:      logger.MustNamed("delivery"),
	}
	uc.permission.Store(models.PermissionDefault)
	for _, opt := range opts {
		opt(uc)
	}
	if uc.dispatch == nil {
		uc.pool = workerpool.New(max(cfg.Socket.Workers, 1))
		uc.dispatch = uc.pool.Submit
	}
	return uc
}

// Init asks for system notification permission once per process. Later
// calls keep the first answer.
func (uc *DeliveryUseCase) Init(ctx context.Context) {
	uc.initOnce.Do(func() {
		if uc.system == nil {
			uc.permission.Store(models.PermissionDenied)
			return
		}
		perm := uc.system.Permission()
		if perm == models.PermissionDefault {
			requested, err := uc.system.RequestPermission(ctx)
			if err != nil {
				uc.fail(ctx, "system", err)
				requested = models.PermissionDenied
			}
			perm = requested
		}
		uc.permission.Store(perm)
		logger.For(ctx, uc.log).Infow("System notification permission resolved", "permission", perm)
	})
}

func (uc *DeliveryUseCase) Permission() models.NotificationPermission {
	return uc.permission.Load().(models.NotificationPermission)
}

func (uc *DeliveryUseCase) PlayTone(frequencyHz float64, duration time.Duration) {
	if !uc.settings.Snapshot().SoundEnabled {
		deliveryAttempts.WithLabelValues("audio", "disabled").Inc()
		return
	}
	if uc.audio == nil || !uc.audio.Available() {
		uc.fail(context.Background(), "audio", models.ErrBackendUnavailable)
		return
	}
	uc.run("audio", func(ctx context.Context) error {
		return uc.audio.PlayTone(ctx, frequencyHz, duration)
	})
}

func (uc *DeliveryUseCase) Vibrate(pattern ...int) {
	if !uc.settings.Snapshot().VibrationEnabled {
		deliveryAttempts.WithLabelValues("haptic", "disabled").Inc()
		return
	}
	if uc.haptic == nil || !uc.haptic.Available() {
		uc.fail(context.Background(), "haptic", models.ErrBackendUnavailable)
		return
	}
	uc.run("haptic", func(ctx context.Context) error {
		return uc.haptic.Vibrate(ctx, pattern)
	})
}

func (uc *DeliveryUseCase) SystemNotify(title, body, tag string) {
	if uc.Permission() != models.PermissionGranted || uc.system == nil {
		deliveryAttempts.WithLabelValues("system", "no_permission").Inc()
		return
	}
	uc.run("system", func(ctx context.Context) error {
		return uc.system.Notify(ctx, title, body, tag)
	})
}

// Close waits for queued cues to finish.
func (uc *DeliveryUseCase) Close() {
	if uc.pool != nil {
		uc.pool.StopWait()
	}
}

func (uc *DeliveryUseCase) run(channel string, fn func(ctx context.Context) error) {
	uc.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				uc.log.Errorw("Delivery panicked", "channel", channel, "panic", r)
				deliveryAttempts.WithLabelValues(channel, "failed").Inc()
			}
		}()
		if err := fn(ctx); err != nil {
			uc.fail(ctx, channel, err)
			return
		}
		deliveryAttempts.WithLabelValues(channel, "delivered").Inc()
	})
}

func (uc *DeliveryUseCase) fail(ctx context.Context, channel string, err error) {
	failure := &models.DeliveryFailure{Channel: channel, Err: err}
	deliveryAttempts.WithLabelValues(channel, "failed").Inc()
	logger.For(ctx, uc.log).Warnw("Delivery failed", "channel", channel, "error", failure)
}
