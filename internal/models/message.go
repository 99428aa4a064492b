package models

import (
	"slices"
	"time"
)

type MessageType string

const (
	MessageTypeText   MessageType = "text"
	MessageTypeImage  MessageType = "image"
	MessageTypeFile   MessageType = "file"
	MessageTypeSystem MessageType = "system"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeImage, MessageTypeFile, MessageTypeSystem:
		return true
	}
	return false
}

// Reaction groups the users that reacted to a message with the same emoji.
// Count always equals len(UserIDs).
type Reaction struct {
	Emoji   string   `json:"emoji"`
	UserIDs []string `json:"user_ids"`
	Count   int      `json:"count"`
}

type Message struct {
	ID        string      `json:"id"`
	RoomID    string      `json:"room_id"`
	Seq       int64       `json:"seq"`
	SenderID  string      `json:"sender_id"`
	Sender    *User       `json:"sender,omitempty"`
	Body      string      `json:"body"`
	Type      MessageType `json:"type"`
	ReplyTo   string      `json:"reply_to,omitempty"`
	Mentions  []string    `json:"mentions,omitempty"`
	Reactions []Reaction  `json:"reactions"`
	Edited    bool        `json:"edited"`
	EditedAt  *time.Time  `json:"edited_at,omitempty"`
	Deleted   bool        `json:"deleted"`
	DeletedAt *time.Time  `json:"deleted_at,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// Clone returns a deep copy safe to hand out of a store.
func (m Message) Clone() Message {
	m.Mentions = slices.Clone(m.Mentions)
	if m.Sender != nil {
		sender := m.Sender.Clone()
		m.Sender = &sender
	}
	reactions := make([]Reaction, len(m.Reactions))
	for i, r := range m.Reactions {
		reactions[i] = Reaction{
			Emoji:   r.Emoji,
			UserIDs: slices.Clone(r.UserIDs),
			Count:   r.Count,
		}
	}
	m.Reactions = reactions
	if m.EditedAt != nil {
		t := *m.EditedAt
		m.EditedAt = &t
	}
	if m.DeletedAt != nil {
		t := *m.DeletedAt
		m.DeletedAt = &t
	}
	return m
}

// Reaction returns the reaction entry for emoji, if any user reacted with it.
func (m Message) Reaction(emoji string) (Reaction, bool) {
	for _, r := range m.Reactions {
		if r.Emoji == emoji {
			return r, true
		}
	}
	return Reaction{}, false
}
