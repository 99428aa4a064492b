package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Requests carry the caller id the gateway puts in X-User-ID.

type userRequest struct {
	UserID string `header:"x-user-id" json:"-" validate:"required"`
}

type roomRequest struct {
	UserID string `header:"x-user-id" json:"-" validate:"required"`
	RoomID string `param:"id" json:"-" validate:"required"`
}

type messageRequest struct {
	UserID    string `header:"x-user-id" json:"-" validate:"required"`
	RoomID    string `param:"id" json:"-" validate:"required"`
	MessageID string `param:"message_id" json:"-" validate:"required"`
}

type idRequest struct {
	ID string `param:"id" json:"-" validate:"required"`
}

type empty struct{}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "community-realtime",
	})
}
