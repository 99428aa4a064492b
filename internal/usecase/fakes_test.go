package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	"github.com/nguyentranbao-ct/community-realtime/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Session: config.SessionConfig{UserID: "me"},
		Chat: config.ChatConfig{
			TypingQuietPeriod: time.Second,
			MaxMessageLength:  2000,
			PageSize:          50,
		},
		Feedback: config.FeedbackConfig{
			QuickDuration:    1500 * time.Millisecond,
			DefaultPosition:  string(models.PositionTopRight),
			DefaultAnimation: string(models.AnimationSlide),
		},
		Notification: config.NotificationConfig{EvictionPolicy: string(models.EvictPreserveUnread)},
		Settings:     config.SettingsConfig{StorageKey: "feedback-settings"},
		Socket:       config.SocketConfig{Workers: 1},
	}
}

type staticSettings struct {
	mu sync.Mutex
	s  models.FeedbackSettings
}

func newStaticSettings(mutate ...func(*models.FeedbackSettings)) *staticSettings {
	s := models.DefaultFeedbackSettings()
	for _, fn := range mutate {
		fn(&s)
	}
	return &staticSettings{s: s}
}

func (f *staticSettings) Snapshot() models.FeedbackSettings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.s
}

func (f *staticSettings) set(fn func(*models.FeedbackSettings)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.s)
}

type tone struct {
	hz       float64
	duration time.Duration
}

type systemCall struct {
	title, body, tag string
}

// recordingDelivery records cues instead of playing them.
type recordingDelivery struct {
	mu        sync.Mutex
	tones     []tone
	vibrates  [][]int
	systemOut []systemCall
}

func (d *recordingDelivery) PlayTone(hz float64, duration time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tones = append(d.tones, tone{hz: hz, duration: duration})
}

func (d *recordingDelivery) Vibrate(pattern ...int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.vibrates = append(d.vibrates, pattern)
}

func (d *recordingDelivery) SystemNotify(title, body, tag string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.systemOut = append(d.systemOut, systemCall{title: title, body: body, tag: tag})
}

func (d *recordingDelivery) snapshot() ([]tone, [][]int, []systemCall) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]tone(nil), d.tones...), append([][]int(nil), d.vibrates...), append([]systemCall(nil), d.systemOut...)
}

type broadcast struct {
	kind    string
	userIDs []string
	roomID  string
	userID  string
	typing  bool
	message models.Message
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []broadcast
}

func (b *recordingBroadcaster) add(ev broadcast) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
}

func (b *recordingBroadcaster) BroadcastMessageToUsers(userIDs []string, message models.Message) {
	b.add(broadcast{kind: "message", userIDs: userIDs, roomID: message.RoomID, message: message})
}

func (b *recordingBroadcaster) BroadcastMessageUpdatedToUsers(userIDs []string, message models.Message) {
	b.add(broadcast{kind: "message_updated", userIDs: userIDs, roomID: message.RoomID, message: message})
}

func (b *recordingBroadcaster) BroadcastReactionToUsers(userIDs []string, message models.Message, emoji, userID string, added bool) {
	b.add(broadcast{kind: "reaction", userIDs: userIDs, roomID: message.RoomID, userID: userID, message: message})
}

func (b *recordingBroadcaster) BroadcastTypingToUsers(userIDs []string, roomID, userID string, isTyping bool) {
	b.add(broadcast{kind: "typing", userIDs: userIDs, roomID: roomID, userID: userID, typing: isTyping})
}

func (b *recordingBroadcaster) BroadcastPresenceToUsers(userIDs []string, user models.User) {
	b.add(broadcast{kind: "presence", userIDs: userIDs, userID: user.ID})
}

func (b *recordingBroadcaster) ofKind(kind string) []broadcast {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []broadcast
	for _, ev := range b.events {
		if ev.kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

type memorySettingsStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	loadErr error
	saveErr error
	saves   int
}

func newMemorySettingsStorage() *memorySettingsStorage {
	return &memorySettingsStorage{data: map[string][]byte{}}
}

func (s *memorySettingsStorage) Load(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.data[key], nil
}

func (s *memorySettingsStorage) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	s.data[key] = data
	return nil
}

type fakeAudio struct {
	mu        sync.Mutex
	available bool
	err       error
	played    []tone
}

func (a *fakeAudio) Available() bool { return a.available }

func (a *fakeAudio) PlayTone(ctx context.Context, hz float64, d time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.played = append(a.played, tone{hz: hz, duration: d})
	return a.err
}

type fakeHaptic struct {
	mu        sync.Mutex
	available bool
	patterns  [][]int
}

func (h *fakeHaptic) Available() bool { return h.available }

func (h *fakeHaptic) Vibrate(ctx context.Context, pattern []int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.patterns = append(h.patterns, pattern)
	return nil
}

type fakeSystem struct {
	mu         sync.Mutex
	permission models.NotificationPermission
	answer     models.NotificationPermission
	requests   int
	sent       []systemCall
}

func (s *fakeSystem) Permission() models.NotificationPermission { return s.permission }

func (s *fakeSystem) RequestPermission(ctx context.Context) (models.NotificationPermission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	if s.answer == "" {
		return "", errors.New("prompt dismissed")
	}
	return s.answer, nil
}

func (s *fakeSystem) Notify(ctx context.Context, title, body, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, systemCall{title: title, body: body, tag: tag})
	return nil
}

func syncDispatch(task func()) { task() }
