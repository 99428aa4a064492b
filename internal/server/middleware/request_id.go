package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
)

const (
	XRequestID     = "x-request-id"
	XCorrelationID = "x-correlation-id"
)

func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(XRequestID).(string); ok && id != "" {
		return id
	}
	if id := GetRequestIDFromContext(c.Request().Context()); id != "" {
		return id
	}
	return GetRequestIDFromHeader(c.Request().Header)
}

func GetRequestIDFromContext(ctx context.Context) string {
	//lint:ignore SA1029 shared with pkg/logger
	id, _ := ctx.Value(logger.RequestIDKey).(string)
	return id
}

func GetRequestIDFromHeader(h http.Header) string {
	if id := h.Get(XRequestID); id != "" {
		return id
	}
	return h.Get(XCorrelationID)
}

// InjectRequestID makes the id visible to handlers, loggers and the response.
func InjectRequestID(c echo.Context, reqID string) {
	//lint:ignore SA1029 shared with pkg/logger
	ctx := context.WithValue(c.Request().Context(), logger.RequestIDKey, reqID)
	c.SetRequest(c.Request().WithContext(ctx))
	c.Set(XRequestID, reqID)
	c.Response().Header().Set(XRequestID, reqID)
}

type RequestIDConfig struct {
	Skipper      Skipper
	GenerateFunc func() string
}

var DefaultRequestIDConfig = RequestIDConfig{
	Skipper:      DefaultSkipper,
	GenerateFunc: uuid.NewString,
}

func RequestID() echo.MiddlewareFunc {
	return RequestIDWithConfig(DefaultRequestIDConfig)
}

func RequestIDWithConfig(config RequestIDConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultRequestIDConfig.Skipper
	}
	if config.GenerateFunc == nil {
		config.GenerateFunc = DefaultRequestIDConfig.GenerateFunc
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}
			reqID := GetRequestIDFromHeader(c.Request().Header)
			if reqID == "" {
				reqID = config.GenerateFunc()
			}
			InjectRequestID(c, reqID)
			return next(c)
		}
	}
}
