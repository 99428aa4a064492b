package models

import (
	"slices"
	"time"
)

type RoomKind string

const (
	RoomPublic  RoomKind = "public"
	RoomPrivate RoomKind = "private"
	RoomDirect  RoomKind = "direct"
)

func (k RoomKind) Valid() bool {
	switch k {
	case RoomPublic, RoomPrivate, RoomDirect:
		return true
	}
	return false
}

type RoomSettings struct {
	AllowFileUpload  bool `json:"allow_file_upload"`
	AllowEmoji       bool `json:"allow_emoji"`
	AllowReactions   bool `json:"allow_reactions"`
	MaxMessageLength int  `json:"max_message_length" validate:"gte=0"`
	SlowMode         bool `json:"slow_mode"`
	SlowModeDelayMs  int  `json:"slow_mode_delay_ms" validate:"gte=0"`
}

func (s RoomSettings) SlowModeDelay() time.Duration {
	return time.Duration(s.SlowModeDelayMs) * time.Millisecond
}

func DefaultRoomSettings(maxMessageLength int) RoomSettings {
	return RoomSettings{
		AllowFileUpload:  true,
		AllowEmoji:       true,
		AllowReactions:   true,
		MaxMessageLength: maxMessageLength,
	}
}

// ChatRoom is a read-only view of a room. Unread is the counter of the
// viewer the snapshot was taken for.
type ChatRoom struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Kind         RoomKind     `json:"kind"`
	Participants []string     `json:"participants"`
	Moderators   []string     `json:"moderators,omitempty"`
	Settings     RoomSettings `json:"settings"`
	Unread       int          `json:"unread"`
	LastMessage  *Message     `json:"last_message,omitempty"`
	MessageCount int          `json:"message_count"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (r ChatRoom) HasParticipant(userID string) bool {
	return slices.Contains(r.Participants, userID)
}

type CreateRoomParams struct {
	ID           string        `json:"id,omitempty"`
	Name         string        `json:"name" validate:"required"`
	Kind         RoomKind      `json:"kind" validate:"required,oneof=public private direct"`
	Participants []string      `json:"participants"`
	Moderators   []string      `json:"moderators,omitempty"`
	Settings     *RoomSettings `json:"settings,omitempty"`
}

// MessageQuery pages backwards through a room. Before is an exclusive
// sequence bound; zero means "from the newest message".
type MessageQuery struct {
	Limit  int   `query:"limit"`
	Before int64 `query:"before"`
}
