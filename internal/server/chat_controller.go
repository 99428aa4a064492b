package server

import (
	"github.com/labstack/echo/v4"

	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/internal/usecase"
)

type ChatController struct {
	chat *usecase.ChatUseCase
}

func NewChatController(chat *usecase.ChatUseCase) *ChatController {
	return &ChatController{chat: chat}
}

func (cc *ChatController) Rooms(c echo.Context, req userRequest) ([]models.ChatRoom, error) {
	return cc.chat.Rooms(c.Request().Context(), req.UserID)
}

type createRoomRequest struct {
	UserID string `header:"x-user-id" json:"-" validate:"required"`
	models.CreateRoomParams
}

// CreateRoom makes the caller a participant and moderator of the new room.
func (cc *ChatController) CreateRoom(c echo.Context, req createRoomRequest) (models.ChatRoom, error) {
	params := req.CreateRoomParams
	params.Participants = appendMissing(params.Participants, req.UserID)
	params.Moderators = appendMissing(params.Moderators, req.UserID)
	return cc.chat.CreateRoom(c.Request().Context(), params)
}

func appendMissing(values []string, value string) []string {
	for _, v := range values {
		if v == value {
			return values
		}
	}
	return append(values, value)
}

func (cc *ChatController) Room(c echo.Context, req roomRequest) (models.ChatRoom, error) {
	return cc.chat.Room(c.Request().Context(), req.RoomID, req.UserID)
}

func (cc *ChatController) Join(c echo.Context, req roomRequest) (models.ChatRoom, error) {
	return cc.chat.JoinRoom(c.Request().Context(), req.RoomID, req.UserID)
}

func (cc *ChatController) Leave(c echo.Context, req roomRequest) error {
	return cc.chat.LeaveRoom(c.Request().Context(), req.RoomID, req.UserID)
}

func (cc *ChatController) Open(c echo.Context, req roomRequest) (models.ChatRoom, error) {
	return cc.chat.OpenRoom(c.Request().Context(), req.RoomID, req.UserID)
}

func (cc *ChatController) MarkSeen(c echo.Context, req roomRequest) error {
	return cc.chat.MarkSeen(c.Request().Context(), req.RoomID, req.UserID)
}

type listMessagesRequest struct {
	UserID string `header:"x-user-id" json:"-" validate:"required"`
	RoomID string `param:"id" json:"-" validate:"required"`
	Limit  int    `query:"limit" validate:"gte=0"`
	Before int64  `query:"before" validate:"gte=0"`
}

func (cc *ChatController) Messages(c echo.Context, req listMessagesRequest) ([]models.Message, error) {
	query := models.MessageQuery{Limit: req.Limit, Before: req.Before}
	return cc.chat.Messages(c.Request().Context(), req.RoomID, req.UserID, query)
}

type sendMessageRequest struct {
	UserID  string             `header:"x-user-id" json:"-" validate:"required"`
	RoomID  string             `param:"id" json:"-" validate:"required"`
	Body    string             `json:"body"`
	Type    models.MessageType `json:"type,omitempty"`
	ReplyTo string             `json:"reply_to,omitempty"`
}

// SendMessage leaves body checks to the use case so rejections carry their reason.
func (cc *ChatController) SendMessage(c echo.Context, req sendMessageRequest) (models.Message, error) {
	return cc.chat.SendMessage(c.Request().Context(), usecase.SendMessageParams{
		RoomID:   req.RoomID,
		SenderID: req.UserID,
		Body:     req.Body,
		Type:     req.Type,
		ReplyTo:  req.ReplyTo,
	})
}

type editMessageRequest struct {
	UserID    string `header:"x-user-id" json:"-" validate:"required"`
	RoomID    string `param:"id" json:"-" validate:"required"`
	MessageID string `param:"message_id" json:"-" validate:"required"`
	Body      string `json:"body"`
}

func (cc *ChatController) EditMessage(c echo.Context, req editMessageRequest) (models.Message, error) {
	return cc.chat.EditMessage(c.Request().Context(), req.RoomID, req.MessageID, req.UserID, req.Body)
}

func (cc *ChatController) DeleteMessage(c echo.Context, req messageRequest) (models.Message, error) {
	return cc.chat.DeleteMessage(c.Request().Context(), req.RoomID, req.MessageID, req.UserID)
}

type reactRequest struct {
	UserID    string `header:"x-user-id" json:"-" validate:"required"`
	RoomID    string `param:"id" json:"-" validate:"required"`
	MessageID string `param:"message_id" json:"-" validate:"required"`
	Emoji     string `json:"emoji"`
}

func (cc *ChatController) React(c echo.Context, req reactRequest) (models.Message, error) {
	return cc.chat.React(c.Request().Context(), req.RoomID, req.MessageID, req.Emoji, req.UserID)
}

func (cc *ChatController) Typing(c echo.Context, req roomRequest) error {
	return cc.chat.Typing(c.Request().Context(), req.RoomID, req.UserID)
}

func (cc *ChatController) StopTyping(c echo.Context, req roomRequest) error {
	cc.chat.StopTyping(c.Request().Context(), req.RoomID, req.UserID)
	return nil
}
