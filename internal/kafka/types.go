package kafka

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/nguyentranbao-ct/community-realtime/internal/models"
)

const (
	PatternPresenceStatus      = "presence.status"
	PatternPresenceTyping      = "presence.typing"
	PatternMessageSent         = "message.sent"
	PatternReactionToggled     = "reaction.toggled"
	PatternNotificationCreated = "notification.created"
)

// Event is the envelope every transport event arrives in.
type Event struct {
	Pattern   string          `json:"pattern"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

type StatusPayload struct {
	UserID string                `json:"user_id" validate:"required"`
	Status models.PresenceStatus `json:"status" validate:"required"`
}

type TypingPayload struct {
	UserID string `json:"user_id" validate:"required"`
	RoomID string `json:"room_id" validate:"required"`
	Typing bool   `json:"typing"`
}

type MessagePayload struct {
	RoomID   string             `json:"room_id" validate:"required"`
	SenderID string             `json:"sender_id" validate:"required"`
	Body     string             `json:"body"`
	Type     models.MessageType `json:"type,omitempty"`
	ReplyTo  string             `json:"reply_to,omitempty"`
}

type ReactionPayload struct {
	RoomID    string `json:"room_id" validate:"required"`
	MessageID string `json:"message_id" validate:"required"`
	Emoji     string `json:"emoji" validate:"required"`
	UserID    string `json:"user_id" validate:"required"`
}
