package kafka

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/internal/usecase"
	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
)

type eventHandler struct {
	presence      PresenceUpdater
	chat          ChatInteractor
	notifications Notifier
	validate      *validator.Validate
	log           *zap.SugaredLogger
}

func NewEventHandler(presence PresenceUpdater, chat ChatInteractor, notifications Notifier) EventHandler {
	return &eventHandler{
		presence:      presence,
		chat:          chat,
		notifications: notifications,
		validate:      validator.New(),
		log:           logger.MustNamed("kafka.handler"),
	}
}

// HandleEvent ignores patterns it does not know so producers can add new ones freely.
func (h *eventHandler) HandleEvent(ctx context.Context, event Event) error {
	switch event.Pattern {
	case PatternPresenceStatus:
		var p StatusPayload
		if err := h.decode(event, &p); err != nil {
			return err
		}
		_, err := h.presence.SetStatus(p.UserID, p.Status)
		return err

	case PatternPresenceTyping:
		var p TypingPayload
		if err := h.decode(event, &p); err != nil {
			return err
		}
		if !p.Typing {
			h.chat.StopTyping(ctx, p.RoomID, p.UserID)
			return nil
		}
		return h.chat.Typing(ctx, p.RoomID, p.UserID)

	case PatternMessageSent:
		var p MessagePayload
		if err := h.decode(event, &p); err != nil {
			return err
		}
		_, err := h.chat.SendMessage(ctx, usecase.SendMessageParams{
			RoomID:   p.RoomID,
			SenderID: p.SenderID,
			Body:     p.Body,
			Type:     p.Type,
			ReplyTo:  p.ReplyTo,
		})
		return err

	case PatternReactionToggled:
		var p ReactionPayload
		if err := h.decode(event, &p); err != nil {
			return err
		}
		_, err := h.chat.React(ctx, p.RoomID, p.MessageID, p.Emoji, p.UserID)
		return err

	case PatternNotificationCreated:
		var p models.NotificationInput
		if err := h.decode(event, &p); err != nil {
			return err
		}
		_, err := h.notifications.Notify(ctx, p)
		return err
	}

	logger.For(ctx, h.log).Infow("Ignoring unknown event", "pattern", event.Pattern)
	return nil
}

func (h *eventHandler) decode(event Event, dst any) error {
	if err := json.Unmarshal(event.Data, dst); err != nil {
		return models.NewValidationError(models.ReasonInvalidArgument, "decode %s payload: %v", event.Pattern, err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return models.NewValidationError(models.ReasonInvalidArgument, "invalid %s payload: %v", event.Pattern, err)
	}
	return nil
}

