package usecase

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
)

type typingKey struct {
	roomID string
	userID string
}

// typingTimer is allocated before its timer starts so the expiry callback
// can identify itself without reading the handle.
type typingTimer struct {
	timer *clock.Timer
}

// PresenceRegistry tracks status and typing state per user. Users are created
// on their first event and are never removed, only marked offline.
type PresenceRegistry struct {
	mu        sync.Mutex
	clock     clock.Clock
	quiet     time.Duration
	users     map[string]*models.User
	typing    map[typingKey]*typingTimer
	listeners []func(models.PresenceEvent)
	log       *zap.SugaredLogger
}

func NewPresenceRegistry(clk clock.Clock, quiet time.Duration) *PresenceRegistry {
	return &PresenceRegistry{
		clock:  clk,
		quiet:  quiet,
		users:  make(map[string]*models.User),
		typing: make(map[typingKey]*typingTimer),
		log:    logger.MustNamed("presence"),
	}
}

// OnChange registers fn for every status or typing transition. fn is called
// outside the registry lock and must not block.
func (r *PresenceRegistry) OnChange(fn func(models.PresenceEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

func (r *PresenceRegistry) SetStatus(userID string, status models.PresenceStatus) (models.User, error) {
	if !status.Valid() {
		return models.User{}, models.NewValidationError(models.ReasonInvalidArgument, "unknown presence status %q", status)
	}

	r.mu.Lock()
	u := r.ensure(userID)
	changed := u.Status != status
	u.Status = status
	u.LastSeen = r.clock.Now()

	var cleared []string
	if status == models.StatusOffline {
		cleared = r.clearTypingLocked(userID)
	}
	snapshot := u.Clone()
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	for _, roomID := range cleared {
		emit(listeners, models.PresenceEvent{Type: models.PresenceEventTyping, User: snapshot, RoomID: roomID})
	}
	if changed {
		emit(listeners, models.PresenceEvent{Type: models.PresenceEventStatus, User: snapshot})
	}
	return snapshot, nil
}

// SetTyping records an already debounced typing signal. A true signal
// auto-clears after the quiet period unless refreshed.
func (r *PresenceRegistry) SetTyping(userID, roomID string, typing bool) {
	key := typingKey{roomID: roomID, userID: userID}

	r.mu.Lock()
	u := r.ensure(userID)
	u.LastSeen = r.clock.Now()

	current, wasTyping := r.typing[key]
	if wasTyping {
		current.timer.Stop()
		delete(r.typing, key)
	}
	if typing {
		tt := &typingTimer{}
		tt.timer = r.clock.AfterFunc(r.quiet, func() { r.expireTyping(key, tt) })
		r.typing[key] = tt
	}
	u.Typing = r.isTypingLocked(userID)
	snapshot := u.Clone()
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	if wasTyping != typing {
		emit(listeners, models.PresenceEvent{Type: models.PresenceEventTyping, User: snapshot, RoomID: roomID, Typing: typing})
	}
}

func (r *PresenceRegistry) expireTyping(key typingKey, tt *typingTimer) {
	r.mu.Lock()
	// a refresh or an explicit stop replaced this timer
	if current, ok := r.typing[key]; !ok || current != tt {
		r.mu.Unlock()
		return
	}
	delete(r.typing, key)
	u := r.users[key.userID]
	u.Typing = r.isTypingLocked(key.userID)
	snapshot := u.Clone()
	listeners := slices.Clone(r.listeners)
	r.mu.Unlock()

	r.log.Debugw("typing expired", "user_id", key.userID, "room_id", key.roomID)
	emit(listeners, models.PresenceEvent{Type: models.PresenceEventTyping, User: snapshot, RoomID: key.roomID})
}

func (r *PresenceRegistry) UpsertProfile(userID string, profile models.UserProfile) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	u := r.ensure(userID)
	if profile.Name != "" {
		u.Name = profile.Name
	}
	if profile.Avatar != "" {
		u.Avatar = profile.Avatar
	}
	if profile.Role != "" {
		u.Role = profile.Role
	}
	if profile.Badges != nil {
		u.Badges = slices.Clone(profile.Badges)
	}
	return u.Clone()
}

func (r *PresenceRegistry) User(userID string) (models.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return models.User{}, false
	}
	return u.Clone(), true
}

func (r *PresenceRegistry) Users() []models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.Clone())
	}
	slices.SortFunc(out, func(a, b models.User) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// TypingUsers lists the users currently typing in roomID.
func (r *PresenceRegistry) TypingUsers(roomID string) []models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for key := range r.typing {
		if key.roomID == roomID {
			out = append(out, r.users[key.userID].Clone())
		}
	}
	slices.SortFunc(out, func(a, b models.User) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// Close stops every pending typing timer.
func (r *PresenceRegistry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, tt := range r.typing {
		tt.timer.Stop()
		delete(r.typing, key)
	}
	for _, u := range r.users {
		u.Typing = false
	}
}

func (r *PresenceRegistry) ensure(userID string) *models.User {
	u, ok := r.users[userID]
	if !ok {
		u = &models.User{
			ID:     userID,
			Name:   userID,
			Status: models.StatusOnline,
			Role:   models.RoleMember,
		}
		r.users[userID] = u
	}
	return u
}

func (r *PresenceRegistry) clearTypingLocked(userID string) []string {
	var rooms []string
	for key, tt := range r.typing {
		if key.userID == userID {
			tt.timer.Stop()
			delete(r.typing, key)
			rooms = append(rooms, key.roomID)
		}
	}
	slices.Sort(rooms)
	r.users[userID].Typing = false
	return rooms
}

func (r *PresenceRegistry) isTypingLocked(userID string) bool {
	for key := range r.typing {
		if key.userID == userID {
			return true
		}
	}
	return false
}

func emit(listeners []func(models.PresenceEvent), ev models.PresenceEvent) {
	for _, fn := range listeners {
		fn(ev)
	}
}
