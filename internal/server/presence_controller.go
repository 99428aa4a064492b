package server

import (
	"github.com/labstack/echo/v4"

	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/internal/usecase"
)

type PresenceController struct {
	presence *usecase.PresenceRegistry
}

func NewPresenceController(presence *usecase.PresenceRegistry) *PresenceController {
	return &PresenceController{presence: presence}
}

func (pc *PresenceController) Users(c echo.Context, _ empty) ([]models.User, error) {
	return pc.presence.Users(), nil
}

func (pc *PresenceController) User(c echo.Context, req idRequest) (models.User, error) {
	u, ok := pc.presence.User(req.ID)
	if !ok {
		return models.User{}, models.NewNotFoundError("user", req.ID)
	}
	return u, nil
}

type setStatusRequest struct {
	ID     string                `param:"id" json:"-" validate:"required"`
	Status models.PresenceStatus `json:"status" validate:"required"`
}

func (pc *PresenceController) SetStatus(c echo.Context, req setStatusRequest) (models.User, error) {
	return pc.presence.SetStatus(req.ID, req.Status)
}

type upsertProfileRequest struct {
	ID string `param:"id" json:"-" validate:"required"`
	models.UserProfile
}

func (pc *PresenceController) UpsertProfile(c echo.Context, req upsertProfileRequest) (models.User, error) {
	return pc.presence.UpsertProfile(req.ID, req.UserProfile), nil
}

func (pc *PresenceController) TypingUsers(c echo.Context, req idRequest) ([]models.User, error) {
	return pc.presence.TypingUsers(req.ID), nil
}
