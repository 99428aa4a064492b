package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogRequest(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := echo.New()
	e.Use(LogRequest(LogRequestConfig{
		Logger:     zap.New(core).Sugar(),
		MaxBodyLog: 16,
		Enabled:    func(c echo.Context) bool { return c.Path() != "/health" },
	}))
	e.POST("/rooms/:id/messages", func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]string{"body": strings.Repeat("x", 40)})
	})
	e.GET("/rooms/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "room not found")
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("store exploded")
	})
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/rooms/general/messages", strings.NewReader(`{"body":"hi"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), strings.Repeat("x", 40), "client still gets the full body")

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/rooms/lobby", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logs.All()
	require.Len(t, entries, 3)

	created := entries[0].ContextMap()
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "/rooms/:id/messages", created["route"])
	assert.Equal(t, map[string]string{"id": "general"}, created["params"])
	assert.Equal(t, `{"body":"hi"}`, fmt.Sprintf("%s", created["request_body"]), "valid JSON stays raw")
	assert.Len(t, created["response_body"], 16, "truncated to the cap")

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "store exploded", entries[2].ContextMap()["error"])
}
