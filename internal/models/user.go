package models

import (
	"slices"
	"time"
)

type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusAway    PresenceStatus = "away"
	StatusBusy    PresenceStatus = "busy"
	StatusOffline PresenceStatus = "offline"
)

func (s PresenceStatus) Valid() bool {
	switch s {
	case StatusOnline, StatusAway, StatusBusy, StatusOffline:
		return true
	}
	return false
}

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleMember    Role = "member"
	RoleGuest     Role = "guest"
)

// CanModerate reports whether the role may edit or delete messages of other users.
func (r Role) CanModerate() bool {
	return r == RoleAdmin || r == RoleModerator
}

type User struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Avatar   string         `json:"avatar,omitempty"`
	Status   PresenceStatus `json:"status"`
	Typing   bool           `json:"typing"`
	Role     Role           `json:"role"`
	Badges   []string       `json:"badges,omitempty"`
	LastSeen time.Time      `json:"last_seen"`
}

func (u User) Clone() User {
	u.Badges = slices.Clone(u.Badges)
	return u
}

// Actor is the identity performing a privileged message operation.
type Actor struct {
	ID   string
	Role Role
}

type PresenceEventType string

const (
	PresenceEventStatus PresenceEventType = "status"
	PresenceEventTyping PresenceEventType = "typing"
)

// PresenceEvent is emitted by the presence registry on every status or typing change.
type PresenceEvent struct {
	Type   PresenceEventType `json:"type"`
	User   User              `json:"user"`
	RoomID string            `json:"room_id,omitempty"`
	Typing bool              `json:"typing"`
}

// UserProfile carries the descriptive part of a user; empty fields are left untouched.
type UserProfile struct {
	Name   string   `json:"name"`
	Avatar string   `json:"avatar,omitempty"`
	Role   Role     `json:"role,omitempty" validate:"omitempty,oneof=admin moderator member guest"`
	Badges []string `json:"badges,omitempty"`
}
