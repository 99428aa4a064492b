package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
)

var validate = validator.New()

// SettingsUseCase owns the process-wide feedback settings. Readers get value
// snapshots; Update is the only mutation path.
type SettingsUseCase struct {
	mu        sync.RWMutex
	storage   SettingsStorage
	key       string
	current   models.FeedbackSettings
	listeners []func(models.FeedbackSettings)
	log       *zap.SugaredLogger
}

func NewSettingsUseCase(cfg *config.Config, storage SettingsStorage) *SettingsUseCase {
	return &SettingsUseCase{
		storage: storage,
		key:     cfg.Settings.StorageKey,
		current: models.DefaultFeedbackSettings(),
		log:     logger.MustNamed("settings"),
	}
}

// Load replaces the current settings with the persisted object. Missing
// fields keep their defaults; malformed or invalid data is discarded as a
// whole and the defaults are used instead.
func (uc *SettingsUseCase) Load(ctx context.Context) error {
	data, err := uc.storage.Load(ctx, uc.key)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	loaded := models.DefaultFeedbackSettings()
	if len(data) > 0 {
		if err := json.Unmarshal(data, &loaded); err != nil {
			logger.For(ctx, uc.log).Warnw("Discarding malformed settings", "key", uc.key, "error", err)
			loaded = models.DefaultFeedbackSettings()
		} else if err := validate.Struct(loaded); err != nil {
			logger.For(ctx, uc.log).Warnw("Discarding invalid settings", "key", uc.key, "error", err)
			loaded = models.DefaultFeedbackSettings()
		}
	}

	uc.mu.Lock()
	uc.current = loaded
	listeners := slices.Clone(uc.listeners)
	uc.mu.Unlock()

	for _, fn := range listeners {
		fn(loaded)
	}
	return nil
}

func (uc *SettingsUseCase) Snapshot() models.FeedbackSettings {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.current
}

// OnChange registers fn to receive every newly applied settings object.
func (uc *SettingsUseCase) OnChange(fn func(models.FeedbackSettings)) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.listeners = append(uc.listeners, fn)
}

// Update merges patch into the current settings and persists the full
// object. The in-memory value only changes once the save succeeded.
func (uc *SettingsUseCase) Update(ctx context.Context, patch models.FeedbackSettingsPatch) (models.FeedbackSettings, error) {
	uc.mu.Lock()
	merged := uc.current.Merge(patch)
	if err := validate.Struct(merged); err != nil {
		uc.mu.Unlock()
		return models.FeedbackSettings{}, models.NewValidationError(models.ReasonInvalidArgument, "%v", err)
	}

	data, err := json.Marshal(merged)
	if err != nil {
		uc.mu.Unlock()
		return models.FeedbackSettings{}, fmt.Errorf("marshal settings: %w", err)
	}
	if err := uc.storage.Save(ctx, uc.key, data); err != nil {
		uc.mu.Unlock()
		return models.FeedbackSettings{}, fmt.Errorf("save settings: %w", err)
	}
	uc.current = merged
	listeners := slices.Clone(uc.listeners)
	uc.mu.Unlock()

	logger.For(ctx, uc.log).Infow("Settings updated", "settings", merged)
	for _, fn := range listeners {
		fn(merged)
	}
	return merged, nil
}
