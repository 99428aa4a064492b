package models

import (
	"maps"
	"slices"
	"time"
)

type NotificationCategory string

const (
	CategorySystem      NotificationCategory = "system"
	CategoryUser        NotificationCategory = "user"
	CategoryAchievement NotificationCategory = "achievement"
	CategoryReminder    NotificationCategory = "reminder"
	CategorySocial      NotificationCategory = "social"
)

type NotificationAction struct {
	Label   string `json:"label" validate:"required"`
	Key     string `json:"key" validate:"required"`
	Primary bool   `json:"primary,omitempty"`
}

type NotificationInput struct {
	Category NotificationCategory `json:"category" validate:"required,oneof=system user achievement reminder social"`
	Title    string               `json:"title" validate:"required"`
	Message  string               `json:"message"`
	Avatar   string               `json:"avatar,omitempty"`
	Actions  []NotificationAction `json:"actions,omitempty" validate:"dive"`
	Metadata map[string]any       `json:"metadata,omitempty"`
}

type Notification struct {
	ID        string               `json:"id"`
	Category  NotificationCategory `json:"category"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Avatar    string               `json:"avatar,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	Read      bool                 `json:"read"`
	ReadAt    *time.Time           `json:"read_at,omitempty"`
	Actions   []NotificationAction `json:"actions,omitempty"`
	Metadata  map[string]any       `json:"metadata,omitempty"`
}

func (n Notification) Clone() Notification {
	n.Actions = slices.Clone(n.Actions)
	n.Metadata = maps.Clone(n.Metadata)
	if n.ReadAt != nil {
		t := *n.ReadAt
		n.ReadAt = &t
	}
	return n
}

type EvictionPolicy string

const (
	// EvictFIFO drops the oldest notification regardless of its read flag.
	EvictFIFO EvictionPolicy = "fifo"
	// EvictPreserveUnread drops the oldest read notification first and only
	// falls back to the oldest unread one when nothing has been read.
	EvictPreserveUnread EvictionPolicy = "preserve_unread"
)

type NotificationPermission string

const (
	PermissionGranted NotificationPermission = "granted"
	PermissionDenied  NotificationPermission = "denied"
	PermissionDefault NotificationPermission = "default"
)
