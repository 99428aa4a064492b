package socket

import (
	"context"
	"time"

	"github.com/gammazero/workerpool"
	"go.uber.org/zap"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/internal/usecase"
	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
)

const (
	EventMessageReceived = "message_received"
	EventMessageUpdated  = "message_updated"
	EventReaction        = "reaction_toggled"
	EventTypingStart     = "user_typing_start"
	EventTypingStop      = "user_typing_stop"
	EventPresence        = "user_status_change"

	broadcastTimeout = 10 * time.Second
)

var _ usecase.EventBroadcaster = (*Broadcaster)(nil)

// Broadcaster sends chat events off the caller's goroutine.
// Failures are logged and never reach the interaction controller.
type Broadcaster struct {
	client *Client
	pool   *workerpool.WorkerPool
	log    *zap.SugaredLogger
}

func NewBroadcaster(conf *config.Config, client *Client) *Broadcaster {
	return &Broadcaster{
		client: client,
		pool:   workerpool.New(max(conf.Socket.Workers, 1)),
		log:    logger.MustNamed("socket.broadcaster"),
	}
}

func (b *Broadcaster) send(name string, events []Event) {
	if len(events) == 0 || !b.client.Enabled() {
		return
	}
	b.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
		defer cancel()
		if err := b.client.SendEvents(ctx, events); err != nil {
			b.log.Warnw("failed to broadcast", "event", name, "recipients", len(events), "error", err)
		}
	})
}

func (b *Broadcaster) BroadcastMessageToUsers(userIDs []string, message models.Message) {
	b.send(EventMessageReceived, b.client.fanout(userIDs, "", EventMessageReceived, message))
}

func (b *Broadcaster) BroadcastMessageUpdatedToUsers(userIDs []string, message models.Message) {
	b.send(EventMessageUpdated, b.client.fanout(userIDs, "", EventMessageUpdated, message))
}

func (b *Broadcaster) BroadcastReactionToUsers(userIDs []string, message models.Message, emoji, userID string, added bool) {
	data := map[string]any{
		"room_id":    message.RoomID,
		"message_id": message.ID,
		"emoji":      emoji,
		"user_id":    userID,
		"added":      added,
		"reactions":  message.Reactions,
	}
	b.send(EventReaction, b.client.fanout(userIDs, "", EventReaction, data))
}

// BroadcastTypingToUsers never echoes the indicator back to the typing user.
func (b *Broadcaster) BroadcastTypingToUsers(userIDs []string, roomID, userID string, isTyping bool) {
	name := EventTypingStop
	if isTyping {
		name = EventTypingStart
	}
	data := map[string]any{
		"user_id":   userID,
		"room_id":   roomID,
		"is_typing": isTyping,
	}
	b.send(name, b.client.fanout(userIDs, userID, name, data))
}

func (b *Broadcaster) BroadcastPresenceToUsers(userIDs []string, user models.User) {
	b.send(EventPresence, b.client.fanout(userIDs, user.ID, EventPresence, user))
}

// Close waits for queued broadcasts to finish.
func (b *Broadcaster) Close() {
	b.pool.StopWait()
}
