package socket

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/internal/usecase"
)

const (
	EventPlayTone            = "play_tone"
	EventVibrate             = "vibrate"
	EventSystemNotification  = "system_notification"
	EventPermissionRequested = "notification_permission_requested"
)

var (
	_ usecase.AudioBackend   = (*AudioBackend)(nil)
	_ usecase.HapticBackend  = (*HapticBackend)(nil)
	_ usecase.SystemNotifier = (*SystemNotifier)(nil)
)

// device addresses the session user's connected device through the gateway.
type device struct {
	client *Client
	userID string
}

func (d device) reachable() bool {
	return d.client.Enabled() && d.userID != ""
}

func (d device) send(ctx context.Context, name string, data any) error {
	if !d.reachable() {
		return models.ErrBackendUnavailable
	}
	return d.client.SendEvents(ctx, d.client.fanout([]string{d.userID}, "", name, data))
}

type AudioBackend struct {
	device
	enabled bool
}

func NewAudioBackend(conf *config.Config, client *Client) *AudioBackend {
	return &AudioBackend{
		device:  device{client: client, userID: conf.Session.UserID},
		enabled: conf.Socket.AudioEnabled,
	}
}

func (a *AudioBackend) Available() bool {
	return a.enabled && a.reachable()
}

func (a *AudioBackend) PlayTone(ctx context.Context, frequencyHz float64, duration time.Duration) error {
	return a.send(ctx, EventPlayTone, map[string]any{
		"frequency_hz": frequencyHz,
		"duration_ms":  duration.Milliseconds(),
	})
}

type HapticBackend struct {
	device
	enabled bool
}

func NewHapticBackend(conf *config.Config, client *Client) *HapticBackend {
	return &HapticBackend{
		device:  device{client: client, userID: conf.Session.UserID},
		enabled: conf.Socket.HapticEnabled,
	}
}

func (h *HapticBackend) Available() bool {
	return h.enabled && h.reachable()
}

func (h *HapticBackend) Vibrate(ctx context.Context, pattern []int) error {
	return h.send(ctx, EventVibrate, map[string]any{"pattern": pattern})
}

// SystemNotifier shows OS-level notifications on the session user's device.
// The configured permission stands in for the device answer; a "default"
// permission is resolved by asking the gateway to prompt the user.
type SystemNotifier struct {
	device
	permission models.NotificationPermission
}

func NewSystemNotifier(conf *config.Config, client *Client) *SystemNotifier {
	return &SystemNotifier{
		device:     device{client: client, userID: conf.Session.UserID},
		permission: models.NotificationPermission(conf.Socket.SystemNotificationPermission),
	}
}

func (s *SystemNotifier) Permission() models.NotificationPermission {
	if !s.reachable() {
		return models.PermissionDenied
	}
	switch s.permission {
	case models.PermissionGranted, models.PermissionDenied:
		return s.permission
	}
	return models.PermissionDefault
}

// RequestPermission resolves to granted once the gateway accepted the prompt.
func (s *SystemNotifier) RequestPermission(ctx context.Context) (models.NotificationPermission, error) {
	if err := s.send(ctx, EventPermissionRequested, map[string]any{}); err != nil {
		return models.PermissionDenied, fmt.Errorf("request notification permission: %w", err)
	}
	return models.PermissionGranted, nil
}

func (s *SystemNotifier) Notify(ctx context.Context, title, body, tag string) error {
	return s.send(ctx, EventSystemNotification, map[string]any{
		"title": title,
		"body":  body,
		"tag":   tag,
	})
}
