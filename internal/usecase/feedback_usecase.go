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
	"github.com/nguyentranbao-ct/community-realtime/pkg/util"
)

type cue struct {
	frequencyHz float64
	duration    time.Duration
	pattern     []int
}

var feedbackCues = map[models.FeedbackKind]cue{
	models.FeedbackSuccess: {frequencyHz: 800, duration: 200 * time.Millisecond, pattern: []int{100}},
	models.FeedbackError:   {frequencyHz: 400, duration: 300 * time.Millisecond, pattern: []int{100, 50, 100}},
	models.FeedbackWarning: {frequencyHz: 600, duration: 200 * time.Millisecond, pattern: []int{150}},
	models.FeedbackInfo:    {frequencyHz: 500, duration: 100 * time.Millisecond, pattern: []int{50}},
}

func playCue(d DeliveryChannel, c cue) {
	d.PlayTone(c.frequencyHz, c.duration)
	d.Vibrate(c.pattern...)
}

type feedbackEntry struct {
	item  models.FeedbackItem
	timer *clock.Timer
	// gen identifies the current arming; a callback from an older timer
	// carries a stale value.
	gen uint64
}

// FeedbackUseCase keeps the ordered list of visible feedback items. Each item
// owns at most one dismiss timer, which is stopped on every removal path.
type FeedbackUseCase struct {
	mu         sync.Mutex
	clock      clock.Clock
	settings   SettingsReader
	delivery   DeliveryChannel
	cfg        config.FeedbackConfig
	items      []*feedbackEntry
	quick      *models.QuickFeedback
	quickTimer *clock.Timer
	listeners  []func(models.FeedbackItem, models.RemovalReason)
	log        *zap.SugaredLogger
}

func NewFeedbackUseCase(cfg *config.Config, clk clock.Clock, settings SettingsReader, delivery DeliveryChannel) *FeedbackUseCase {
	return &FeedbackUseCase{
		clock:    clk,
		settings: settings,
		delivery: delivery,
		cfg:      cfg.Feedback,
		log:      logger.MustNamed("feedback"),
	}
}

// OnRemove registers fn for every item leaving the list. fn runs outside the lock.
func (uc *FeedbackUseCase) OnRemove(fn func(models.FeedbackItem, models.RemovalReason)) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.listeners = append(uc.listeners, fn)
}

// Show adds a feedback item and returns its id. It returns "" without
// touching the list when feedback is disabled.
func (uc *FeedbackUseCase) Show(ctx context.Context, in models.FeedbackInput) (string, error) {
	settings := uc.settings.Snapshot()
	if !settings.Enabled {
		return "", nil
	}
	if !in.Kind.Valid() {
		return "", models.NewValidationError(models.ReasonInvalidArgument, "unknown feedback kind %q", in.Kind)
	}
	if in.Progress != nil && (*in.Progress < 0 || *in.Progress > 100) {
		return "", models.NewValidationError(models.ReasonInvalidArgument, "progress must be within 0..100")
	}

	uc.mu.Lock()
	if settings.GroupSimilar && !in.Kind.Persistent() {
		if e := uc.similarLocked(in); e != nil {
			e.item.Count++
			uc.armLocked(e, settings)
			id := e.item.ID
			uc.mu.Unlock()

			feedbackShown.WithLabelValues(string(in.Kind), "true").Inc()
			uc.deliverCue(in.Kind)
			return id, nil
		}
	}

	item := models.FeedbackItem{
		ID:         uuid.NewString(),
		Kind:       in.Kind,
		Title:      in.Title,
		Message:    in.Message,
		CreatedAt:  uc.clock.Now(),
		Duration:   in.Duration,
		Persistent: in.Persistent || in.Kind.Persistent(),
		Position:   in.Position,
		Animation:  in.Animation,
		Progress:   in.Progress,
		Action:     in.Action,
		Count:      1,
	}
	if item.Duration == 0 {
		item.Duration = settings.DefaultDuration()
	}
	if item.Position == "" {
		item.Position = models.FeedbackPosition(uc.cfg.DefaultPosition)
	}
	if item.Animation == "" {
		item.Animation = models.AnimationType(uc.cfg.DefaultAnimation)
	}
	if item.Kind == models.FeedbackProgress && item.Progress == nil {
		item.Progress = util.Ptr(0)
	}

	e := &feedbackEntry{item: item.Clone()}
	uc.items = append(uc.items, e)
	uc.armLocked(e, settings)
	uc.mu.Unlock()

	feedbackShown.WithLabelValues(string(in.Kind), "false").Inc()
	logger.For(ctx, uc.log).Debugw("Feedback shown", "id", item.ID, "kind", item.Kind)
	uc.deliverCue(in.Kind)
	return item.ID, nil
}

// Hide removes the item immediately, persistent or not.
func (uc *FeedbackUseCase) Hide(ctx context.Context, id string) error {
	if _, ok := uc.remove(id, models.RemovalDismissed); !ok {
		return models.NewNotFoundError("feedback", id)
	}
	return nil
}

// UpdateProgress changes the value of a progress item. Its timer is left alone.
func (uc *FeedbackUseCase) UpdateProgress(ctx context.Context, id string, value int) (models.FeedbackItem, error) {
	if value < 0 || value > 100 {
		return models.FeedbackItem{}, models.NewValidationError(models.ReasonInvalidArgument, "progress must be within 0..100")
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()
	e := uc.findLocked(id)
	if e == nil {
		return models.FeedbackItem{}, models.NewNotFoundError("feedback", id)
	}
	if e.item.Kind != models.FeedbackProgress {
		return models.FeedbackItem{}, models.NewValidationError(models.ReasonInvalidArgument, "feedback %q is not a progress item", id)
	}
	e.item.Progress = util.Ptr(value)
	return e.item.Clone(), nil
}

// Complete removes a loading or progress item and, when message is set,
// shows a success item in its place.
func (uc *FeedbackUseCase) Complete(ctx context.Context, id, message string) (string, error) {
	uc.mu.Lock()
	e := uc.findLocked(id)
	if e == nil {
		uc.mu.Unlock()
		return "", models.NewNotFoundError("feedback", id)
	}
	if !e.item.Kind.Persistent() {
		uc.mu.Unlock()
		return "", models.NewValidationError(models.ReasonInvalidArgument, "feedback %q cannot be completed", id)
	}
	uc.mu.Unlock()

	if _, ok := uc.remove(id, models.RemovalCompleted); !ok {
		return "", models.NewNotFoundError("feedback", id)
	}
	if message == "" {
		return "", nil
	}
	return uc.Show(ctx, models.FeedbackInput{Kind: models.FeedbackSuccess, Message: message})
}

// TakeAction removes an item through its action and returns the action taken.
func (uc *FeedbackUseCase) TakeAction(ctx context.Context, id string) (models.FeedbackAction, error) {
	uc.mu.Lock()
	e := uc.findLocked(id)
	if e == nil {
		uc.mu.Unlock()
		return models.FeedbackAction{}, models.NewNotFoundError("feedback", id)
	}
	if e.item.Action == nil {
		uc.mu.Unlock()
		return models.FeedbackAction{}, models.NewValidationError(models.ReasonInvalidArgument, "feedback %q has no action", id)
	}
	uc.mu.Unlock()

	item, ok := uc.remove(id, models.RemovalAction)
	if !ok {
		return models.FeedbackAction{}, models.NewNotFoundError("feedback", id)
	}
	return *item.Action, nil
}

func (uc *FeedbackUseCase) ShowProgress(ctx context.Context, message string, progress int) (string, error) {
	return uc.Show(ctx, models.FeedbackInput{
		Kind:       models.FeedbackProgress,
		Message:    message,
		Progress:   util.Ptr(progress),
		Persistent: true,
	})
}

func (uc *FeedbackUseCase) ShowLoading(ctx context.Context, message string) (string, error) {
	return uc.Show(ctx, models.FeedbackInput{
		Kind:       models.FeedbackLoading,
		Message:    message,
		Persistent: true,
	})
}

func (uc *FeedbackUseCase) HideLoading(ctx context.Context, id string) error {
	return uc.Hide(ctx, id)
}

// HideAllLoading dismisses every loading and progress item and returns how
// many were removed.
func (uc *FeedbackUseCase) HideAllLoading(ctx context.Context) int {
	uc.mu.Lock()
	var removed []models.FeedbackItem
	var listeners []func(models.FeedbackItem, models.RemovalReason)
	for _, id := range uc.loadingIDsLocked() {
		var item models.FeedbackItem
		item, listeners = uc.removeLocked(id)
		removed = append(removed, item)
	}
	uc.mu.Unlock()

	for _, item := range removed {
		uc.notifyRemoved(listeners, item, models.RemovalDismissed)
	}
	if len(removed) > 0 {
		logger.For(ctx, uc.log).Debugw("Loading feedback cleared", "count", len(removed))
	}
	return len(removed)
}

// IsLoading reports whether any loading or progress item is visible.
func (uc *FeedbackUseCase) IsLoading() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return len(uc.loadingIDsLocked()) > 0
}

func (uc *FeedbackUseCase) loadingIDsLocked() []string {
	var ids []string
	for _, e := range uc.items {
		if e.item.Kind.Persistent() {
			ids = append(ids, e.item.ID)
		}
	}
	return ids
}

// ShowQuick fills the single quick slot, replacing whatever was there.
// Only success and error play a cue.
func (uc *FeedbackUseCase) ShowQuick(ctx context.Context, kind models.FeedbackKind, message string) error {
	if !kind.Valid() || kind.Persistent() {
		return models.NewValidationError(models.ReasonInvalidArgument, "unsupported quick feedback kind %q", kind)
	}
	if !uc.settings.Snapshot().Enabled {
		return nil
	}

	uc.mu.Lock()
	if uc.quickTimer != nil {
		uc.quickTimer.Stop()
	}
	q := &models.QuickFeedback{Kind: kind, Message: message, CreatedAt: uc.clock.Now()}
	uc.quick = q
	uc.quickTimer = uc.clock.AfterFunc(uc.cfg.QuickDuration, func() {
		uc.mu.Lock()
		defer uc.mu.Unlock()
		if uc.quick == q {
			uc.quick = nil
			uc.quickTimer = nil
		}
	})
	uc.mu.Unlock()

	if kind == models.FeedbackSuccess || kind == models.FeedbackError {
		playCue(uc.delivery, feedbackCues[kind])
	}
	return nil
}

func (uc *FeedbackUseCase) Quick() (models.QuickFeedback, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if uc.quick == nil {
		return models.QuickFeedback{}, false
	}
	return *uc.quick, true
}

// Active returns the visible items in insertion order.
func (uc *FeedbackUseCase) Active() []models.FeedbackItem {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	out := make([]models.FeedbackItem, len(uc.items))
	for i, e := range uc.items {
		out[i] = e.item.Clone()
	}
	return out
}

// Close stops every timer and drops all items.
func (uc *FeedbackUseCase) Close() {
	uc.mu.Lock()
	removed := make([]models.FeedbackItem, 0, len(uc.items))
	for _, e := range uc.items {
		if e.timer != nil {
			e.timer.Stop()
			e.timer = nil
		}
		removed = append(removed, e.item.Clone())
	}
	uc.items = nil
	if uc.quickTimer != nil {
		uc.quickTimer.Stop()
		uc.quickTimer = nil
	}
	uc.quick = nil
	listeners := slices.Clone(uc.listeners)
	uc.mu.Unlock()

	for _, item := range removed {
		uc.notifyRemoved(listeners, item, models.RemovalShutdown)
	}
}

// armLocked replaces the item's timer. Only non-persistent items with a
// positive duration get one, and only while auto-hide is on.
func (uc *FeedbackUseCase) armLocked(e *feedbackEntry, settings models.FeedbackSettings) {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
	if !settings.AutoHide || e.item.Persistent || e.item.Duration <= 0 {
		return
	}
	id, gen := e.item.ID, e.gen
	e.timer = uc.clock.AfterFunc(e.item.Duration, func() { uc.expire(id, gen) })
}

func (uc *FeedbackUseCase) expire(id string, gen uint64) {
	uc.mu.Lock()
	e := uc.findLocked(id)
	// hidden already, or re-armed by a grouped show
	if e == nil || e.timer == nil || e.gen != gen {
		uc.mu.Unlock()
		return
	}
	e.timer = nil
	item, listeners := uc.removeLocked(id)
	uc.mu.Unlock()

	uc.notifyRemoved(listeners, item, models.RemovalExpired)
}

func (uc *FeedbackUseCase) remove(id string, reason models.RemovalReason) (models.FeedbackItem, bool) {
	uc.mu.Lock()
	if uc.findLocked(id) == nil {
		uc.mu.Unlock()
		return models.FeedbackItem{}, false
	}
	item, listeners := uc.removeLocked(id)
	uc.mu.Unlock()

	uc.notifyRemoved(listeners, item, reason)
	return item, true
}

func (uc *FeedbackUseCase) removeLocked(id string) (models.FeedbackItem, []func(models.FeedbackItem, models.RemovalReason)) {
	i := slices.IndexFunc(uc.items, func(e *feedbackEntry) bool { return e.item.ID == id })
	e := uc.items[i]
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	uc.items = slices.Delete(uc.items, i, i+1)
	return e.item.Clone(), slices.Clone(uc.listeners)
}

func (uc *FeedbackUseCase) notifyRemoved(listeners []func(models.FeedbackItem, models.RemovalReason), item models.FeedbackItem, reason models.RemovalReason) {
	feedbackRemoved.WithLabelValues(string(reason)).Inc()
	for _, fn := range listeners {
		fn(item, reason)
	}
}

func (uc *FeedbackUseCase) findLocked(id string) *feedbackEntry {
	for _, e := range uc.items {
		if e.item.ID == id {
			return e
		}
	}
	return nil
}

func (uc *FeedbackUseCase) similarLocked(in models.FeedbackInput) *feedbackEntry {
	for _, e := range uc.items {
		if e.item.Kind == in.Kind && e.item.Title == in.Title && e.item.Message == in.Message {
			return e
		}
	}
	return nil
}

func (uc *FeedbackUseCase) deliverCue(kind models.FeedbackKind) {
	if c, ok := feedbackCues[kind]; ok {
		playCue(uc.delivery, c)
	}
}
