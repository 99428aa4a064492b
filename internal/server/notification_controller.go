package server

import (
	"github.com/labstack/echo/v4"

	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/internal/usecase"
)

type NotificationController struct {
	notifications *usecase.NotificationUseCase
}

func NewNotificationController(notifications *usecase.NotificationUseCase) *NotificationController {
	return &NotificationController{notifications: notifications}
}

type notificationList struct {
	Items       []models.Notification `json:"items"`
	UnreadCount int                   `json:"unread_count"`
}

func (nc *NotificationController) List(c echo.Context, _ empty) (notificationList, error) {
	return notificationList{
		Items:       nc.notifications.List(),
		UnreadCount: nc.notifications.UnreadCount(),
	}, nil
}

func (nc *NotificationController) Notify(c echo.Context, req models.NotificationInput) (models.Notification, error) {
	return nc.notifications.Notify(c.Request().Context(), req)
}

func (nc *NotificationController) MarkRead(c echo.Context, req idRequest) (models.Notification, error) {
	return nc.notifications.MarkRead(c.Request().Context(), req.ID)
}

type markAllReadResponse struct {
	Marked int `json:"marked"`
}

func (nc *NotificationController) MarkAllRead(c echo.Context, _ empty) (markAllReadResponse, error) {
	return markAllReadResponse{Marked: nc.notifications.MarkAllRead(c.Request().Context())}, nil
}

func (nc *NotificationController) Remove(c echo.Context, req idRequest) error {
	return nc.notifications.Remove(c.Request().Context(), req.ID)
}

func (nc *NotificationController) ClearAll(c echo.Context, _ empty) error {
	nc.notifications.ClearAll(c.Request().Context())
	return nil
}
