package usecase

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
	"github.com/nguyentranbao-ct/community-realtime/pkg/tmplx"
)

type chatEvent struct {
	SenderName string
	RoomName   string
	Body       string
	Emoji      string
}

var sampleChatEvent = chatEvent{SenderName: "linh", RoomName: "general", Body: "hello", Emoji: "👍"}

var (
	mentionTitle = tmplx.MustParse("mention_title",
		`{{.SenderName}} mentioned you in {{default "a room" .RoomName}}`,
		tmplx.WithValidate(sampleChatEvent, tmplx.NotEmpty))
	directTitle = tmplx.MustParse("direct_title",
		`New message from {{.SenderName}}`,
		tmplx.WithValidate(sampleChatEvent, tmplx.NotEmpty))
	reactionTitle = tmplx.MustParse("reaction_title",
		`{{.SenderName}} reacted {{.Emoji}} to your message`,
		tmplx.WithValidate(sampleChatEvent, tmplx.NotEmpty))
	messagePreview = tmplx.MustParse("message_preview",
		`{{truncate 120 .Body}}`)
)

type Notifier interface {
	Notify(ctx context.Context, in models.NotificationInput) (models.Notification, error)
}

// ChatNotifier raises social notifications for the session user: mentions,
// direct messages and reactions to their own messages.
type ChatNotifier struct {
	sessionUserID string
	notifier      Notifier
	presence      PresenceLookup
	log           *zap.SugaredLogger
}

func NewChatNotifier(cfg *config.Config, notifier Notifier, presence PresenceLookup) *ChatNotifier {
	return &ChatNotifier{
		sessionUserID: cfg.Session.UserID,
		notifier:      notifier,
		presence:      presence,
		log:           logger.MustNamed("chat_notifier"),
	}
}

func (n *ChatNotifier) MessageSent(ctx context.Context, room models.ChatRoom, msg models.Message) {
	if n.sessionUserID == "" || msg.SenderID == n.sessionUserID || msg.Type == models.MessageTypeSystem {
		return
	}

	var title *tmplx.Template
	switch {
	case slices.Contains(msg.Mentions, n.sessionUserID):
		title = mentionTitle
	case room.Kind == models.RoomDirect && room.HasParticipant(n.sessionUserID):
		title = directTitle
	default:
		return
	}

	ev := chatEvent{SenderName: n.displayName(msg.SenderID), RoomName: room.Name, Body: msg.Body}
	n.notify(ctx, title, ev, msg, map[string]any{
		"room_id":    room.ID,
		"message_id": msg.ID,
		"sender_id":  msg.SenderID,
	})
}

func (n *ChatNotifier) ReactionToggled(ctx context.Context, msg models.Message, emoji, userID string, added bool) {
	if !added || n.sessionUserID == "" || msg.SenderID != n.sessionUserID || userID == n.sessionUserID {
		return
	}
	ev := chatEvent{SenderName: n.displayName(userID), Body: msg.Body, Emoji: emoji}
	n.notify(ctx, reactionTitle, ev, models.Message{SenderID: userID, Body: msg.Body}, map[string]any{
		"room_id":    msg.RoomID,
		"message_id": msg.ID,
		"emoji":      emoji,
		"user_id":    userID,
	})
}

func (n *ChatNotifier) notify(ctx context.Context, title *tmplx.Template, ev chatEvent, msg models.Message, metadata map[string]any) {
	log := logger.For(ctx, n.log)
	titleText, err := title.RenderString(ev)
	if err != nil {
		log.Errorw("Failed to render notification title", "error", err)
		return
	}
	body, err := messagePreview.RenderString(ev)
	if err != nil {
		log.Errorw("Failed to render notification body", "error", err)
		return
	}

	in := models.NotificationInput{
		Category: models.CategorySocial,
		Title:    titleText,
		Message:  body,
		Metadata: metadata,
	}
	if u, ok := n.presence.User(msg.SenderID); ok {
		in.Avatar = u.Avatar
	}
	if _, err := n.notifier.Notify(ctx, in); err != nil {
		log.Warnw("Failed to raise chat notification", "error", err)
	}
}

func (n *ChatNotifier) displayName(userID string) string {
	if u, ok := n.presence.User(userID); ok && u.Name != "" {
		return u.Name
	}
	return userID
}
