package kafka

import (
	"context"

	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/internal/usecase"
)

type Consumer interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// EventHandler applies one decoded transport event to the engine.
type EventHandler interface {
	HandleEvent(ctx context.Context, event Event) error
}

type PresenceUpdater interface {
	SetStatus(userID string, status models.PresenceStatus) (models.User, error)
}

type ChatInteractor interface {
	SendMessage(ctx context.Context, params usecase.SendMessageParams) (models.Message, error)
	React(ctx context.Context, roomID, messageID, emoji, userID string) (models.Message, error)
	Typing(ctx context.Context, roomID, userID string) error
	StopTyping(ctx context.Context, roomID, userID string)
}

type Notifier interface {
	Notify(ctx context.Context, in models.NotificationInput) (models.Notification, error)
}
