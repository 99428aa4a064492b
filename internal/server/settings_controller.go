package server

import (
	"github.com/labstack/echo/v4"

	"github.com/nguyentranbao-ct/community-realtime/internal/models"
	"github.com/nguyentranbao-ct/community-realtime/internal/usecase"
)

type SettingsController struct {
	settings *usecase.SettingsUseCase
	delivery *usecase.DeliveryUseCase
}

func NewSettingsController(settings *usecase.SettingsUseCase, delivery *usecase.DeliveryUseCase) *SettingsController {
	return &SettingsController{settings: settings, delivery: delivery}
}

type settingsView struct {
	models.FeedbackSettings
	SystemNotifications models.NotificationPermission `json:"system_notifications"`
}

func (sc *SettingsController) view(s models.FeedbackSettings) settingsView {
	return settingsView{FeedbackSettings: s, SystemNotifications: sc.delivery.Permission()}
}

func (sc *SettingsController) Get(c echo.Context, _ empty) (settingsView, error) {
	return sc.view(sc.settings.Snapshot()), nil
}

func (sc *SettingsController) Update(c echo.Context, req models.FeedbackSettingsPatch) (settingsView, error) {
	s, err := sc.settings.Update(c.Request().Context(), req)
	if err != nil {
		return settingsView{}, err
	}
	return sc.view(s), nil
}
