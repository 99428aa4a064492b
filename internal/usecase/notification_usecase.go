package usecase

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
)

var notificationCue = cue{frequencyHz: 700, duration: 200 * time.Millisecond, pattern: []int{100}}

// NotificationUseCase keeps the capped, most-recent-first notification list.
type NotificationUseCase struct {
	mu       sync.Mutex
	clock    clock.Clock
	settings SettingsReader
	delivery DeliveryChannel
	policy   models.EvictionPolicy
	items    []models.Notification
	log      *zap.SugaredLogger
}

func NewNotificationUseCase(cfg *config.Config, clk clock.Clock, settings SettingsReader, delivery DeliveryChannel) *NotificationUseCase {
	policy := models.EvictionPolicy(cfg.Notification.EvictionPolicy)
	if policy != models.EvictFIFO {
		policy = models.EvictPreserveUnread
	}
	return &NotificationUseCase{
		clock:    clk,
		settings: settings,
		delivery: delivery,
		policy:   policy,
		log:      logger.MustNamed("notification"),
	}
}

// Notify prepends a new unread notification, enforces the cap and plays the
// notification cue. Records are kept even when feedback is disabled; only the
// cue is skipped then.
func (uc *NotificationUseCase) Notify(ctx context.Context, in models.NotificationInput) (models.Notification, error) {
	if err := validate.Struct(in); err != nil {
		return models.Notification{}, models.NewValidationError(models.ReasonInvalidArgument, "%v", err)
	}
	settings := uc.settings.Snapshot()

	n := models.Notification{
		ID:        uuid.NewString(),
		Category:  in.Category,
		Title:     in.Title,
		Message:   in.Message,
		Avatar:    in.Avatar,
		CreatedAt: uc.clock.Now(),
		Actions:   slices.Clone(in.Actions),
		Metadata:  in.Metadata,
	}
	n = n.Clone()

	uc.mu.Lock()
	uc.items = slices.Insert(uc.items, 0, n)
	evicted := uc.evictLocked(settings.MaxNotifications)
	uc.mu.Unlock()

	notificationsCreated.WithLabelValues(string(n.Category)).Inc()
	for _, e := range evicted {
		notificationsEvicted.WithLabelValues(boolLabel(e.Read)).Inc()
		logger.For(ctx, uc.log).Debugw("Notification evicted", "id", e.ID, "read", e.Read)
	}

	if settings.Enabled {
		playCue(uc.delivery, notificationCue)
		uc.delivery.SystemNotify(n.Title, n.Message, n.ID)
	}
	return n.Clone(), nil
}

// evictLocked drops items until at most limit remain. Under the
// preserve-unread policy the oldest read item goes first; the oldest item
// overall only goes when every item is unread.
func (uc *NotificationUseCase) evictLocked(limit int) []models.Notification {
	if limit < 1 {
		limit = 1
	}
	var evicted []models.Notification
	for len(uc.items) > limit {
		victim := len(uc.items) - 1
		if uc.policy == models.EvictPreserveUnread {
			for i := len(uc.items) - 1; i >= 0; i-- {
				if uc.items[i].Read {
					victim = i
					break
				}
			}
		}
		evicted = append(evicted, uc.items[victim])
		uc.items = slices.Delete(uc.items, victim, victim+1)
	}
	return evicted
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, id string) (models.Notification, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	i := uc.indexLocked(id)
	if i < 0 {
		return models.Notification{}, models.NewNotFoundError("notification", id)
	}
	if !uc.items[i].Read {
		now := uc.clock.Now()
		uc.items[i].Read = true
		uc.items[i].ReadAt = &now
	}
	return uc.items[i].Clone(), nil
}

// MarkAllRead flips every unread item and reports how many changed.
func (uc *NotificationUseCase) MarkAllRead(ctx context.Context) int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	now := uc.clock.Now()
	changed := 0
	for i := range uc.items {
		if !uc.items[i].Read {
			uc.items[i].Read = true
			uc.items[i].ReadAt = &now
			changed++
		}
	}
	return changed
}

func (uc *NotificationUseCase) Remove(ctx context.Context, id string) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	i := uc.indexLocked(id)
	if i < 0 {
		return models.NewNotFoundError("notification", id)
	}
	uc.items = slices.Delete(uc.items, i, i+1)
	return nil
}

func (uc *NotificationUseCase) ClearAll(ctx context.Context) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.items = nil
}

// List returns the notifications, most recent first.
func (uc *NotificationUseCase) List() []models.Notification {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	out := make([]models.Notification, len(uc.items))
	for i, n := range uc.items {
		out[i] = n.Clone()
	}
	return out
}

// UnreadCount is computed on every call.
func (uc *NotificationUseCase) UnreadCount() int {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	count := 0
	for _, n := range uc.items {
		if !n.Read {
			count++
		}
	}
	return count
}

func (uc *NotificationUseCase) indexLocked(id string) int {
	return slices.IndexFunc(uc.items, func(n models.Notification) bool { return n.ID == id })
}
