package memory

import (
	"context"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/pkg/util"
)

const maxPageSize = 200

// PresenceLookup resolves the current presence of a message sender.
type PresenceLookup interface {
	User(userID string) (models.User, bool)
}

type room struct {
	models.ChatRoom
	messages []*models.Message
	index    map[string]int
	unread   map[string]int
	limiters map[string]*senderLimiter
}

// senderLimiter enforces slow mode for one sender: a burst of one message
// refilled once per delay.
type senderLimiter struct {
	delay   time.Duration
	limiter *rate.Limiter
}

// RoomStore keeps rooms and their messages in process memory. Messages are
// only ever appended; deletion leaves a tombstone in place.
type RoomStore struct {
	mu        sync.RWMutex
	rooms     map[string]*room
	order     []string
	active    map[string]string
	presence  PresenceLookup
	maxLength int
	pageSize  int
}

func NewRoomStore(cfg *config.Config, presence PresenceLookup) *RoomStore {
	return &RoomStore{
		rooms:     make(map[string]*room),
		active:    make(map[string]string),
		presence:  presence,
		maxLength: cfg.Chat.MaxMessageLength,
		pageSize:  cfg.Chat.PageSize,
	}
}

func (s *RoomStore) CreateRoom(ctx context.Context, params models.CreateRoomParams) (models.ChatRoom, error) {
	if !params.Kind.Valid() {
		return models.ChatRoom{}, models.NewValidationError(models.ReasonInvalidArgument, "unknown room kind %q", params.Kind)
	}
	participants := dedupe(params.Participants)
	if params.Kind == models.RoomDirect && len(participants) != 2 {
		return models.ChatRoom{}, models.NewValidationError(models.ReasonInvalidArgument, "direct room needs exactly two participants")
	}

	settings := models.DefaultRoomSettings(s.maxLength)
	if params.Settings != nil {
		settings = *params.Settings
		if settings.MaxMessageLength == 0 {
			settings.MaxMessageLength = s.maxLength
		}
	}

	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[id]; ok {
		return models.ChatRoom{}, models.NewValidationError(models.ReasonInvalidArgument, "room %q already exists", id)
	}

	r := &room{
		ChatRoom: models.ChatRoom{
			ID:           id,
			Name:         params.Name,
			Kind:         params.Kind,
			Participants: participants,
			Moderators:   dedupe(params.Moderators),
			Settings:     settings,
			CreatedAt:    time.Now(),
		},
		index:    make(map[string]int),
		unread:   make(map[string]int),
		limiters: make(map[string]*senderLimiter),
	}
	s.rooms[id] = r
	s.order = append(s.order, id)
	return s.viewLocked(r, ""), nil
}

func (s *RoomStore) Room(ctx context.Context, roomID, viewerID string) (models.ChatRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.roomLocked(roomID)
	if err != nil {
		return models.ChatRoom{}, err
	}
	return s.viewLocked(r, viewerID), nil
}

// Rooms lists the rooms userID participates in plus every public room, in creation order.
func (s *RoomStore) Rooms(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChatRoom, 0, len(s.order))
	for _, id := range s.order {
		r := s.rooms[id]
		if r.Kind == models.RoomPublic || r.HasParticipant(userID) {
			out = append(out, s.viewLocked(r, userID))
		}
	}
	return out, nil
}

func (s *RoomStore) Join(ctx context.Context, roomID, userID string) (models.ChatRoom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.roomLocked(roomID)
	if err != nil {
		return models.ChatRoom{}, err
	}
	if !r.HasParticipant(userID) {
		if r.Kind != models.RoomPublic {
			return models.ChatRoom{}, models.NewPermissionError("join room "+roomID, userID)
		}
		r.Participants = append(r.Participants, userID)
	}
	return s.viewLocked(r, userID), nil
}

func (s *RoomStore) Leave(ctx context.Context, roomID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.roomLocked(roomID)
	if err != nil {
		return err
	}
	r.Participants = util.Remove(r.Participants, userID)
	delete(r.unread, userID)
	delete(r.limiters, userID)
	if s.active[userID] == roomID {
		delete(s.active, userID)
	}
	return nil
}

func (s *RoomStore) Participants(ctx context.Context, roomID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.roomLocked(roomID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(r.Participants), nil
}

// AppendMessage validates msg against the room settings and appends it.
// Nothing is mutated when an error is returned.
func (s *RoomStore) AppendMessage(ctx context.Context, roomID string, msg models.Message) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.roomLocked(roomID)
	if err != nil {
		return models.Message{}, err
	}
	if msg.Type == "" {
		msg.Type = models.MessageTypeText
	}
	if !msg.Type.Valid() {
		return models.Message{}, models.NewValidationError(models.ReasonInvalidArgument, "unknown message type %q", msg.Type)
	}
	if (msg.Type == models.MessageTypeImage || msg.Type == models.MessageTypeFile) && !r.Settings.AllowFileUpload {
		return models.Message{}, models.NewValidationError(models.ReasonUploadsDisabled, "room %q does not accept %s messages", roomID, msg.Type)
	}
	if limit := r.Settings.MaxMessageLength; limit > 0 && utf8.RuneCountInString(msg.Body) > limit {
		return models.Message{}, models.NewValidationError(models.ReasonTooLong, "message exceeds %d characters", limit)
	}

	system := msg.Type == models.MessageTypeSystem
	join := false
	if !system && !r.HasParticipant(msg.SenderID) {
		if r.Kind != models.RoomPublic {
			return models.Message{}, models.NewPermissionError("post in room "+roomID, msg.SenderID)
		}
		join = true
	}
	if msg.ReplyTo != "" {
		if _, ok := r.index[msg.ReplyTo]; !ok {
			return models.Message{}, models.NewNotFoundError("message", msg.ReplyTo)
		}
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	if !system && r.Settings.SlowMode && r.Settings.SlowModeDelay() > 0 {
		if !r.limiter(msg.SenderID).AllowN(msg.CreatedAt, 1) {
			return models.Message{}, models.NewValidationError(models.ReasonSlowMode, "slow mode allows one message every %s", r.Settings.SlowModeDelay())
		}
	}

	if join {
		r.Participants = append(r.Participants, msg.SenderID)
	}
	if msg.ID == "" {
		msg.ID = ulid.MustNew(ulid.Timestamp(msg.CreatedAt), ulid.DefaultEntropy()).String()
	}
	msg.RoomID = roomID
	msg.Seq = int64(len(r.messages)) + 1
	msg.Sender = nil
	msg.Edited, msg.EditedAt = false, nil
	msg.Deleted, msg.DeletedAt = false, nil
	if msg.Reactions == nil {
		msg.Reactions = []models.Reaction{}
	}

	stored := msg.Clone()
	r.index[stored.ID] = len(r.messages)
	r.messages = append(r.messages, &stored)
	r.MessageCount = len(r.messages)

	for _, p := range r.Participants {
		if p == msg.SenderID || s.active[p] == roomID {
			continue
		}
		r.unread[p]++
	}
	return s.decorate(stored), nil
}

func (r *room) limiter(senderID string) *rate.Limiter {
	delay := r.Settings.SlowModeDelay()
	l, ok := r.limiters[senderID]
	if !ok || l.delay != delay {
		l = &senderLimiter{delay: delay, limiter: rate.NewLimiter(rate.Every(delay), 1)}
		r.limiters[senderID] = l
	}
	return l.limiter
}

// ToggleReaction adds userID to the emoji's reactors, or removes them when
// they already reacted.
func (s *RoomStore) ToggleReaction(ctx context.Context, roomID, messageID, emoji, userID string) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.roomLocked(roomID)
	if err != nil {
		return models.Message{}, err
	}
	if !r.Settings.AllowReactions {
		return models.Message{}, models.NewNotFoundError("reactions in room", roomID)
	}
	if r.Kind != models.RoomPublic && !r.HasParticipant(userID) {
		return models.Message{}, models.NewPermissionError("react in room "+roomID, userID)
	}
	m, err := r.messageLocked(messageID)
	if err != nil {
		return models.Message{}, err
	}
	if m.Deleted {
		return models.Message{}, models.NewNotFoundError("message", messageID)
	}

	i := slices.IndexFunc(m.Reactions, func(x models.Reaction) bool { return x.Emoji == emoji })
	switch {
	case i < 0:
		m.Reactions = append(m.Reactions, models.Reaction{Emoji: emoji, UserIDs: []string{userID}, Count: 1})
	case slices.Contains(m.Reactions[i].UserIDs, userID):
		users := util.Remove(m.Reactions[i].UserIDs, userID)
		if len(users) == 0 {
			m.Reactions = slices.Delete(m.Reactions, i, i+1)
		} else {
			m.Reactions[i].UserIDs = users
			m.Reactions[i].Count = len(users)
		}
	default:
		m.Reactions[i].UserIDs = append(m.Reactions[i].UserIDs, userID)
		m.Reactions[i].Count = len(m.Reactions[i].UserIDs)
	}
	return s.decorate(*m), nil
}

func (s *RoomStore) EditMessage(ctx context.Context, roomID, messageID string, actor models.Actor, body string, at time.Time) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, m, err := s.modifiableLocked(roomID, messageID, actor, "edit message "+messageID)
	if err != nil {
		return models.Message{}, err
	}
	if m.Deleted {
		return models.Message{}, models.NewNotFoundError("message", messageID)
	}
	if limit := r.Settings.MaxMessageLength; limit > 0 && utf8.RuneCountInString(body) > limit {
		return models.Message{}, models.NewValidationError(models.ReasonTooLong, "message exceeds %d characters", limit)
	}
	m.Body = body
	m.Edited = true
	m.EditedAt = &at
	return s.decorate(*m), nil
}

// DeleteMessage tombstones the message in place. Deleting twice is a no-op.
func (s *RoomStore) DeleteMessage(ctx context.Context, roomID, messageID string, actor models.Actor, at time.Time) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, m, err := s.modifiableLocked(roomID, messageID, actor, "delete message "+messageID)
	if err != nil {
		return models.Message{}, err
	}
	if !m.Deleted {
		m.Deleted = true
		m.DeletedAt = &at
		m.Body = ""
		m.Mentions = nil
		m.Reactions = []models.Reaction{}
	}
	return s.decorate(*m), nil
}

// Messages returns up to query.Limit messages older than query.Before, oldest first.
func (s *RoomStore) Messages(ctx context.Context, roomID string, query models.MessageQuery) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, err := s.roomLocked(roomID)
	if err != nil {
		return nil, err
	}
	limit := query.Limit
	if limit <= 0 {
		limit = s.pageSize
	}
	limit = min(limit, maxPageSize)

	end := len(r.messages)
	if query.Before > 0 && query.Before-1 < int64(end) {
		end = int(query.Before - 1)
	}
	start := max(0, end-limit)

	out := make([]models.Message, 0, end-start)
	for _, m := range r.messages[start:end] {
		out = append(out, s.decorate(*m))
	}
	return out, nil
}

func (s *RoomStore) Message(ctx context.Context, roomID, messageID string) (models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.roomLocked(roomID)
	if err != nil {
		return models.Message{}, err
	}
	m, err := r.messageLocked(messageID)
	if err != nil {
		return models.Message{}, err
	}
	return s.decorate(*m), nil
}

// MarkRoomSeen resets the unread counter of userID in roomID.
func (s *RoomStore) MarkRoomSeen(ctx context.Context, roomID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.roomLocked(roomID)
	if err != nil {
		return err
	}
	if _, ok := r.unread[userID]; ok {
		r.unread[userID] = 0
	}
	return nil
}

// SetActiveRoom records the room userID currently has open; messages
// arriving there do not count as unread for them. An empty roomID clears it.
func (s *RoomStore) SetActiveRoom(ctx context.Context, userID, roomID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if roomID == "" {
		delete(s.active, userID)
		return nil
	}
	if _, err := s.roomLocked(roomID); err != nil {
		return err
	}
	s.active[userID] = roomID
	return nil
}

func (s *RoomStore) roomLocked(roomID string) (*room, error) {
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, models.NewNotFoundError("room", roomID)
	}
	return r, nil
}

func (r *room) messageLocked(messageID string) (*models.Message, error) {
	i, ok := r.index[messageID]
	if !ok {
		return nil, models.NewNotFoundError("message", messageID)
	}
	return r.messages[i], nil
}

func (s *RoomStore) modifiableLocked(roomID, messageID string, actor models.Actor, action string) (*room, *models.Message, error) {
	r, err := s.roomLocked(roomID)
	if err != nil {
		return nil, nil, err
	}
	m, err := r.messageLocked(messageID)
	if err != nil {
		return nil, nil, err
	}
	if m.SenderID != actor.ID && !actor.Role.CanModerate() && !slices.Contains(r.Moderators, actor.ID) {
		return nil, nil, models.NewPermissionError(action, actor.ID)
	}
	return r, m, nil
}

func (s *RoomStore) viewLocked(r *room, viewerID string) models.ChatRoom {
	view := r.ChatRoom
	view.Participants = slices.Clone(r.Participants)
	view.Moderators = slices.Clone(r.Moderators)
	view.Unread = r.unread[viewerID]
	view.LastMessage = nil
	if n := len(r.messages); n > 0 {
		last := s.decorate(*r.messages[n-1])
		view.LastMessage = &last
	}
	return view
}

func (s *RoomStore) decorate(m models.Message) models.Message {
	out := m.Clone()
	if s.presence == nil || out.SenderID == "" {
		return out
	}
	if u, ok := s.presence.User(out.SenderID); ok {
		out.Sender = &u
	}
	return out
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
