package usecase

import (
	"context"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/pkg/debounce"
	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
	"github.com/nguyentranbao-ct/community-realtime/pkg/util"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// SendMessageParams contains parameters for sending a message
type SendMessageParams struct {
	RoomID   string             `json:"room_id"`
	SenderID string             `json:"sender_id"`
	Body     string             `json:"body"`
	Type     models.MessageType `json:"type,omitempty"`
	ReplyTo  string             `json:"reply_to,omitempty"`
}

type typingState struct {
	debouncer *debounce.Debouncer
}

// ChatUseCase drives the room store and the presence registry on behalf of
// users. Typing keystrokes are coalesced before they reach presence.
type ChatUseCase struct {
	rooms       RoomStore
	presence    Presence
	broadcaster EventBroadcaster
	observers   []ChatObserver
	clock       clock.Clock
	quiet       time.Duration

	mu     sync.Mutex
	typers map[typingKey]*typingState
	log    *zap.SugaredLogger
}

func NewChatUseCase(
	cfg *config.Config,
	clk clock.Clock,
	rooms RoomStore,
	presence Presence,
	broadcaster EventBroadcaster,
	observers ...ChatObserver,
) *ChatUseCase {
	uc := &ChatUseCase{
		rooms:       rooms,
		presence:    presence,
		broadcaster: broadcaster,
		observers:   observers,
		clock:       clk,
		quiet:       cfg.Chat.TypingQuietPeriod,
		typers:      make(map[typingKey]*typingState),
		log:         logger.MustNamed("chat"),
	}
	presence.OnChange(uc.onPresenceChange)
	return uc
}

// SendMessage validates the body, stamps id and time, and appends the
// message. A rejected message leaves the room untouched.
func (uc *ChatUseCase) SendMessage(ctx context.Context, params SendMessageParams) (models.Message, error) {
	body := strings.TrimSpace(params.Body)
	if body == "" {
		messagesRejected.WithLabelValues(string(models.ReasonEmptyBody)).Inc()
		return models.Message{}, models.NewValidationError(models.ReasonEmptyBody, "message body is empty")
	}

	now := uc.clock.Now()
	msg := models.Message{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		SenderID:  params.SenderID,
		Body:      body,
		Type:      params.Type,
		ReplyTo:   params.ReplyTo,
		Mentions:  uc.resolveMentions(body),
		CreatedAt: now,
	}

	saved, err := uc.rooms.AppendMessage(ctx, params.RoomID, msg)
	if err != nil {
		if reason := models.ValidationReasonOf(err); reason != "" {
			messagesRejected.WithLabelValues(string(reason)).Inc()
		}
		logger.For(ctx, uc.log).Infow("Message rejected", "room_id", params.RoomID, "sender_id", params.SenderID, "error", err)
		return models.Message{}, err
	}
	messagesSent.WithLabelValues(string(saved.Type)).Inc()

	uc.StopTyping(ctx, params.RoomID, params.SenderID)

	room, err := uc.rooms.Room(ctx, params.RoomID, params.SenderID)
	if err != nil {
		logger.For(ctx, uc.log).Warnw("Failed to load room after send", "room_id", params.RoomID, "error", err)
		return saved, nil
	}
	uc.broadcaster.BroadcastMessageToUsers(room.Participants, saved)
	for _, o := range uc.observers {
		o.MessageSent(ctx, room, saved)
	}
	return saved, nil
}

// React toggles emoji on a message for userID.
func (uc *ChatUseCase) React(ctx context.Context, roomID, messageID, emoji, userID string) (models.Message, error) {
	if strings.TrimSpace(emoji) == "" {
		return models.Message{}, models.NewValidationError(models.ReasonInvalidArgument, "emoji is empty")
	}
	msg, err := uc.rooms.ToggleReaction(ctx, roomID, messageID, emoji, userID)
	if err != nil {
		return models.Message{}, err
	}

	added := false
	if r, ok := msg.Reaction(emoji); ok {
		added = slices.Contains(r.UserIDs, userID)
	}
	result := "removed"
	if added {
		result = "added"
	}
	reactionsToggled.WithLabelValues(result).Inc()

	if participants, err := uc.rooms.Participants(ctx, roomID); err == nil {
		uc.broadcaster.BroadcastReactionToUsers(participants, msg, emoji, userID, added)
	}
	for _, o := range uc.observers {
		o.ReactionToggled(ctx, msg, emoji, userID, added)
	}
	return msg, nil
}

// Typing is called on every keystroke. Each keystroke refreshes the presence
// signal, which only emits on the first one of a burst; the signal is
// cleared once the user stays quiet.
func (uc *ChatUseCase) Typing(ctx context.Context, roomID, userID string) error {
	if _, err := uc.rooms.Participants(ctx, roomID); err != nil {
		return err
	}

	key := typingKey{roomID: roomID, userID: userID}
	uc.mu.Lock()
	st, ok := uc.typers[key]
	if !ok {
		st = &typingState{}
		st.debouncer = debounce.New(uc.clock, uc.quiet, func() { uc.typingQuiet(key, st) })
		uc.typers[key] = st
	}
	st.debouncer.Call()
	uc.mu.Unlock()

	uc.presence.SetTyping(userID, roomID, true)
	return nil
}

// StopTyping clears the typing signal right away, e.g. on send or leave.
func (uc *ChatUseCase) StopTyping(ctx context.Context, roomID, userID string) {
	key := typingKey{roomID: roomID, userID: userID}
	uc.mu.Lock()
	st, ok := uc.typers[key]
	if ok {
		delete(uc.typers, key)
	}
	uc.mu.Unlock()

	if ok && st.debouncer.Cancel() {
		uc.presence.SetTyping(userID, roomID, false)
	}
}

func (uc *ChatUseCase) typingQuiet(key typingKey, st *typingState) {
	uc.mu.Lock()
	// a keystroke opened a new burst right after the timer fired
	if st.debouncer.Active() {
		uc.mu.Unlock()
		return
	}
	if uc.typers[key] == st {
		delete(uc.typers, key)
	}
	uc.mu.Unlock()

	uc.presence.SetTyping(key.userID, key.roomID, false)
}

func (uc *ChatUseCase) EditMessage(ctx context.Context, roomID, messageID, userID, body string) (models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.Message{}, models.NewValidationError(models.ReasonEmptyBody, "message body is empty")
	}
	msg, err := uc.rooms.EditMessage(ctx, roomID, messageID, uc.actor(userID), body, uc.clock.Now())
	if err != nil {
		return models.Message{}, err
	}
	uc.broadcastUpdated(ctx, roomID, msg)
	return msg, nil
}

func (uc *ChatUseCase) DeleteMessage(ctx context.Context, roomID, messageID, userID string) (models.Message, error) {
	msg, err := uc.rooms.DeleteMessage(ctx, roomID, messageID, uc.actor(userID), uc.clock.Now())
	if err != nil {
		return models.Message{}, err
	}
	uc.broadcastUpdated(ctx, roomID, msg)
	return msg, nil
}

func (uc *ChatUseCase) MarkSeen(ctx context.Context, roomID, userID string) error {
	return uc.rooms.MarkRoomSeen(ctx, roomID, userID)
}

// OpenRoom makes roomID the active room of userID and marks it seen.
func (uc *ChatUseCase) OpenRoom(ctx context.Context, roomID, userID string) (models.ChatRoom, error) {
	if err := uc.rooms.SetActiveRoom(ctx, userID, roomID); err != nil {
		return models.ChatRoom{}, err
	}
	if err := uc.rooms.MarkRoomSeen(ctx, roomID, userID); err != nil {
		return models.ChatRoom{}, err
	}
	return uc.rooms.Room(ctx, roomID, userID)
}

func (uc *ChatUseCase) CreateRoom(ctx context.Context, params models.CreateRoomParams) (models.ChatRoom, error) {
	room, err := uc.rooms.CreateRoom(ctx, params)
	if err != nil {
		return models.ChatRoom{}, err
	}
	logger.For(ctx, uc.log).Infow("Room created", "room_id", room.ID, "kind", room.Kind)
	return room, nil
}

func (uc *ChatUseCase) JoinRoom(ctx context.Context, roomID, userID string) (models.ChatRoom, error) {
	return uc.rooms.Join(ctx, roomID, userID)
}

func (uc *ChatUseCase) LeaveRoom(ctx context.Context, roomID, userID string) error {
	uc.StopTyping(ctx, roomID, userID)
	return uc.rooms.Leave(ctx, roomID, userID)
}

func (uc *ChatUseCase) Rooms(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	return uc.rooms.Rooms(ctx, userID)
}

// Room returns the room as seen by viewerID. Non-public rooms are only
// visible to their participants.
func (uc *ChatUseCase) Room(ctx context.Context, roomID, viewerID string) (models.ChatRoom, error) {
	room, err := uc.rooms.Room(ctx, roomID, viewerID)
	if err != nil {
		return models.ChatRoom{}, err
	}
	if room.Kind != models.RoomPublic && !room.HasParticipant(viewerID) {
		return models.ChatRoom{}, models.NewPermissionError("view room "+roomID, viewerID)
	}
	return room, nil
}

func (uc *ChatUseCase) Messages(ctx context.Context, roomID, viewerID string, query models.MessageQuery) ([]models.Message, error) {
	if _, err := uc.Room(ctx, roomID, viewerID); err != nil {
		return nil, err
	}
	return uc.rooms.Messages(ctx, roomID, query)
}

// Close cancels every pending typing timer without emitting signals.
func (uc *ChatUseCase) Close() {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	for key, st := range uc.typers {
		st.debouncer.Cancel()
		delete(uc.typers, key)
	}
}

func (uc *ChatUseCase) actor(userID string) models.Actor {
	actor := models.Actor{ID: userID, Role: models.RoleMember}
	if u, ok := uc.presence.User(userID); ok && u.Role != "" {
		actor.Role = u.Role
	}
	return actor
}

// resolveMentions maps @handles to known user ids, matching either the id
// or the display name without spaces.
func (uc *ChatUseCase) resolveMentions(body string) []string {
	matches := mentionPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}
	users := uc.presence.Users()
	var ids []string
	for _, m := range matches {
		handle := m[1]
		for _, u := range users {
			name := strings.ReplaceAll(u.Name, " ", "")
			if strings.EqualFold(u.ID, handle) || strings.EqualFold(name, handle) {
				if !slices.Contains(ids, u.ID) {
					ids = append(ids, u.ID)
				}
				break
			}
		}
	}
	return ids
}

func (uc *ChatUseCase) broadcastUpdated(ctx context.Context, roomID string, msg models.Message) {
	participants, err := uc.rooms.Participants(ctx, roomID)
	if err != nil {
		logger.For(ctx, uc.log).Warnw("Failed to load participants", "room_id", roomID, "error", err)
		return
	}
	uc.broadcaster.BroadcastMessageUpdatedToUsers(participants, msg)
}

// onPresenceChange fans presence events out to the users sharing a room with
// the subject.
func (uc *ChatUseCase) onPresenceChange(ev models.PresenceEvent) {
	ctx := context.Background()
	switch ev.Type {
	case models.PresenceEventTyping:
		participants, err := uc.rooms.Participants(ctx, ev.RoomID)
		if err != nil {
			return
		}
		uc.broadcaster.BroadcastTypingToUsers(util.Remove(participants, ev.User.ID), ev.RoomID, ev.User.ID, ev.Typing)
	case models.PresenceEventStatus:
		rooms, err := uc.rooms.Rooms(ctx, ev.User.ID)
		if err != nil {
			return
		}
		var audience []string
		for _, r := range rooms {
			if !r.HasParticipant(ev.User.ID) {
				continue
			}
			for _, p := range r.Participants {
				if p != ev.User.ID && !slices.Contains(audience, p) {
					audience = append(audience, p)
				}
			}
		}
		if len(audience) > 0 {
			uc.broadcaster.BroadcastPresenceToUsers(audience, ev.User)
		}
	}
}
