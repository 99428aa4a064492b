package kafka

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/internal/usecase"
)

type fakePresence struct {
	statuses map[string]models.PresenceStatus
}

func (f *fakePresence) SetStatus(userID string, status models.PresenceStatus) (models.User, error) {
	if !status.Valid() {
		return models.User{}, models.NewValidationError(models.ReasonInvalidArgument, "bad status %q", status)
	}
	f.statuses[userID] = status
	return models.User{ID: userID, Status: status}, nil
}

type fakeChat struct {
	sent    []usecase.SendMessageParams
	reacted []string
	typing  []string
	stopped []string
}

func (f *fakeChat) SendMessage(_ context.Context, params usecase.SendMessageParams) (models.Message, error) {
	f.sent = append(f.sent, params)
	return models.Message{ID: "m1", RoomID: params.RoomID}, nil
}

func (f *fakeChat) React(_ context.Context, roomID, messageID, emoji, userID string) (models.Message, error) {
	f.reacted = append(f.reacted, roomID+"/"+messageID+"/"+emoji+"/"+userID)
	return models.Message{ID: messageID}, nil
}

func (f *fakeChat) Typing(_ context.Context, roomID, userID string) error {
	f.typing = append(f.typing, roomID+"/"+userID)
	return nil
}

func (f *fakeChat) StopTyping(_ context.Context, roomID, userID string) {
	f.stopped = append(f.stopped, roomID+"/"+userID)
}

type fakeNotifier struct {
	inputs []models.NotificationInput
}

func (f *fakeNotifier) Notify(_ context.Context, in models.NotificationInput) (models.Notification, error) {
	f.inputs = append(f.inputs, in)
	return models.Notification{ID: "n1", Title: in.Title}, nil
}

func newTestHandler() (EventHandler, *fakePresence, *fakeChat, *fakeNotifier) {
	p := &fakePresence{statuses: map[string]models.PresenceStatus{}}
	c := &fakeChat{}
	n := &fakeNotifier{}
	return NewEventHandler(p, c, n), p, c, n
}

func event(t *testing.T, pattern string, data any) Event {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	return Event{Pattern: pattern, Data: raw}
}

func TestEventHandler_Dispatch(t *testing.T) {
	ctx := context.Background()
	h, presence, chat, notifier := newTestHandler()

	require.NoError(t, h.HandleEvent(ctx, event(t, PatternPresenceStatus, StatusPayload{UserID: "alice", Status: models.StatusBusy})))
	assert.Equal(t, models.StatusBusy, presence.statuses["alice"])

	require.NoError(t, h.HandleEvent(ctx, event(t, PatternPresenceTyping, TypingPayload{UserID: "bob", RoomID: "general", Typing: true})))
	require.NoError(t, h.HandleEvent(ctx, event(t, PatternPresenceTyping, TypingPayload{UserID: "bob", RoomID: "general"})))
	assert.Equal(t, []string{"general/bob"}, chat.typing)
	assert.Equal(t, []string{"general/bob"}, chat.stopped)

	require.NoError(t, h.HandleEvent(ctx, event(t, PatternMessageSent, MessagePayload{RoomID: "general", SenderID: "bob", Body: "hi"})))
	require.Len(t, chat.sent, 1)
	assert.Equal(t, "hi", chat.sent[0].Body)
	assert.Equal(t, "bob", chat.sent[0].SenderID)

	require.NoError(t, h.HandleEvent(ctx, event(t, PatternReactionToggled, ReactionPayload{RoomID: "general", MessageID: "m1", Emoji: "👍", UserID: "carol"})))
	assert.Equal(t, []string{"general/m1/👍/carol"}, chat.reacted)

	require.NoError(t, h.HandleEvent(ctx, event(t, PatternNotificationCreated, models.NotificationInput{Category: models.CategorySystem, Title: "Maintenance"})))
	require.Len(t, notifier.inputs, 1)
	assert.Equal(t, "Maintenance", notifier.inputs[0].Title)
}

func TestEventHandler_Invalid(t *testing.T) {
	ctx := context.Background()
	h, _, chat, notifier := newTestHandler()

	err := h.HandleEvent(ctx, Event{Pattern: PatternMessageSent, Data: json.RawMessage(`{"room_id":`)})
	assert.True(t, models.IsValidation(err))

	err = h.HandleEvent(ctx, event(t, PatternReactionToggled, ReactionPayload{RoomID: "general"}))
	assert.True(t, models.IsValidation(err))
	assert.Empty(t, chat.reacted)

	err = h.HandleEvent(ctx, event(t, PatternNotificationCreated, models.NotificationInput{Category: "spam", Title: "x"}))
	assert.True(t, models.IsValidation(err))
	assert.Empty(t, notifier.inputs)

	err = h.HandleEvent(ctx, event(t, PatternPresenceStatus, StatusPayload{UserID: "alice", Status: "sleeping"}))
	assert.True(t, models.IsValidation(err))

	assert.NoError(t, h.HandleEvent(ctx, event(t, "room.archived", map[string]string{"room_id": "general"})))
}
