package server

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	mw "github.com/nguyentranbao-ct/community-realtime/internal/server/middleware"
	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
)

type Controllers struct {
	fx.In

	Presence     *PresenceController
	Chat         *ChatController
	Feedback     *FeedbackController
	Notification *NotificationController
	Settings     *SettingsController
}

func NewEcho(conf *config.Config, h Controllers) *echo.Echo {
	log := logger.MustNamed("http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = mw.NewValidator()
	e.HTTPErrorHandler = mw.ErrorHandler(log)

	e.Use(mw.Metrics())
	e.Use(mw.RequestID())
	e.Use(mw.Identity())
	e.Use(mw.LogRequest(mw.LogRequestConfig{
		Logger: log,
		Enabled: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path != "/health" && path != "/metrics"
		},
	}))
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.For(c.Request().Context(), log).Errorw("PANIC RECOVER", "error", err, "stack", string(stack))
			return err
		},
	}))
	if conf.Server.CORSPattern != "" {
		e.Use(mw.CORS(regexp.MustCompile(conf.Server.CORSPattern)))
	}

	e.GET("/health", health)

	api := e.Group("/api/v1")

	api.GET("/users", mw.Handle(h.Presence.Users))
	api.GET("/users/:id", mw.Handle(h.Presence.User))
	api.PUT("/users/:id/status", mw.Handle(h.Presence.SetStatus))
	api.PUT("/users/:id/profile", mw.Handle(h.Presence.UpsertProfile))

	api.GET("/rooms", mw.Handle(h.Chat.Rooms))
	api.POST("/rooms", mw.Handle(h.Chat.CreateRoom))
	api.GET("/rooms/:id", mw.Handle(h.Chat.Room))
	api.POST("/rooms/:id/join", mw.Handle(h.Chat.Join))
	api.POST("/rooms/:id/leave", mw.HandleNoContent(h.Chat.Leave))
	api.POST("/rooms/:id/open", mw.Handle(h.Chat.Open))
	api.POST("/rooms/:id/seen", mw.HandleNoContent(h.Chat.MarkSeen))
	api.GET("/rooms/:id/typing", mw.Handle(h.Presence.TypingUsers))
	api.POST("/rooms/:id/typing", mw.HandleNoContent(h.Chat.Typing))
	api.DELETE("/rooms/:id/typing", mw.HandleNoContent(h.Chat.StopTyping))
	api.GET("/rooms/:id/messages", mw.Handle(h.Chat.Messages))
	api.POST("/rooms/:id/messages", mw.Handle(h.Chat.SendMessage))
	api.PATCH("/rooms/:id/messages/:message_id", mw.Handle(h.Chat.EditMessage))
	api.DELETE("/rooms/:id/messages/:message_id", mw.Handle(h.Chat.DeleteMessage))
	api.POST("/rooms/:id/messages/:message_id/reactions", mw.Handle(h.Chat.React))

	api.GET("/feedback", mw.Handle(h.Feedback.Active))
	api.POST("/feedback", mw.Handle(h.Feedback.Show))
	api.POST("/feedback/quick", mw.HandleNoContent(h.Feedback.ShowQuick))
	api.POST("/feedback/loading", mw.Handle(h.Feedback.ShowLoading))
	api.DELETE("/feedback/loading", mw.Handle(h.Feedback.HideAllLoading))
	api.DELETE("/feedback/loading/:id", mw.HandleNoContent(h.Feedback.HideLoading))
	api.POST("/feedback/progress", mw.Handle(h.Feedback.ShowProgress))
	api.DELETE("/feedback/:id", mw.HandleNoContent(h.Feedback.Hide))
	api.PUT("/feedback/:id/progress", mw.Handle(h.Feedback.UpdateProgress))
	api.POST("/feedback/:id/complete", mw.Handle(h.Feedback.Complete))
	api.POST("/feedback/:id/action", mw.Handle(h.Feedback.TakeAction))

	api.GET("/notifications", mw.Handle(h.Notification.List))
	api.POST("/notifications", mw.Handle(h.Notification.Notify))
	api.POST("/notifications/read", mw.Handle(h.Notification.MarkAllRead))
	api.POST("/notifications/:id/read", mw.Handle(h.Notification.MarkRead))
	api.DELETE("/notifications", mw.HandleNoContent(h.Notification.ClearAll))
	api.DELETE("/notifications/:id", mw.HandleNoContent(h.Notification.Remove))

	api.GET("/settings", mw.Handle(h.Settings.Get))
	api.PATCH("/settings", mw.Handle(h.Settings.Update))

	return e
}

func StartServer(lc fx.Lifecycle, sd fx.Shutdowner, conf *config.Config, e *echo.Echo) {
	log := logger.MustNamed("http")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow("starting HTTP server", "addr", conf.Server.Addr)
				if err := e.Start(conf.Server.Addr); !errors.Is(err, http.ErrServerClosed) {
					log.Errorw("HTTP server stopped", "error", err)
					_ = sd.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}
