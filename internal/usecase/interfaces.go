package usecase

import (
	"context"
	"time"

	"github.com/nguyentranbao-ct/community-realtime/internal/models"
)

// RoomStore holds rooms, their membership and ordered message lists.
// Every returned value is a snapshot owned by the caller.
type RoomStore interface {
	CreateRoom(ctx context.Context, params models.CreateRoomParams) (models.ChatRoom, error)
	Room(ctx context.Context, roomID, viewerID string) (models.ChatRoom, error)
	Rooms(ctx context.Context, userID string) ([]models.ChatRoom, error)
	Join(ctx context.Context, roomID, userID string) (models.ChatRoom, error)
	Leave(ctx context.Context, roomID, userID string) error
	Participants(ctx context.Context, roomID string) ([]string, error)

	AppendMessage(ctx context.Context, roomID string, msg models.Message) (models.Message, error)
	ToggleReaction(ctx context.Context, roomID, messageID, emoji, userID string) (models.Message, error)
	EditMessage(ctx context.Context, roomID, messageID string, actor models.Actor, body string, at time.Time) (models.Message, error)
	DeleteMessage(ctx context.Context, roomID, messageID string, actor models.Actor, at time.Time) (models.Message, error)
	Messages(ctx context.Context, roomID string, query models.MessageQuery) ([]models.Message, error)
	Message(ctx context.Context, roomID, messageID string) (models.Message, error)

	MarkRoomSeen(ctx context.Context, roomID, userID string) error
	SetActiveRoom(ctx context.Context, userID, roomID string) error
}

// PresenceLookup decorates message senders with their current presence.
type PresenceLookup interface {
	User(userID string) (models.User, bool)
}

// Presence is the part of the presence registry the interaction controller drives.
type Presence interface {
	PresenceLookup
	Users() []models.User
	SetTyping(userID, roomID string, typing bool)
	OnChange(fn func(models.PresenceEvent))
}

// EventBroadcaster pushes chat events to connected users through the socket gateway.
type EventBroadcaster interface {
	BroadcastMessageToUsers(userIDs []string, message models.Message)
	BroadcastMessageUpdatedToUsers(userIDs []string, message models.Message)
	BroadcastReactionToUsers(userIDs []string, message models.Message, emoji, userID string, added bool)
	BroadcastTypingToUsers(userIDs []string, roomID, userID string, isTyping bool)
	BroadcastPresenceToUsers(userIDs []string, user models.User)
}

// ChatObserver is told about accepted chat activity after the store committed it.
type ChatObserver interface {
	MessageSent(ctx context.Context, room models.ChatRoom, msg models.Message)
	ReactionToggled(ctx context.Context, msg models.Message, emoji, userID string, added bool)
}

// DeliveryChannel plays non-visual cues. Calls never block and never fail.
type DeliveryChannel interface {
	PlayTone(frequencyHz float64, duration time.Duration)
	Vibrate(pattern ...int)
	SystemNotify(title, body, tag string)
}

type AudioBackend interface {
	Available() bool
	PlayTone(ctx context.Context, frequencyHz float64, duration time.Duration) error
}

type HapticBackend interface {
	Available() bool
	Vibrate(ctx context.Context, pattern []int) error
}

type SystemNotifier interface {
	Permission() models.NotificationPermission
	RequestPermission(ctx context.Context) (models.NotificationPermission, error)
	Notify(ctx context.Context, title, body, tag string) error
}

// SettingsStorage persists the serialized settings object under one key.
// Load returns (nil, nil) when nothing was stored yet.
type SettingsStorage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

type SettingsReader interface {
	Snapshot() models.FeedbackSettings
}
