package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nguyentranbao-ct/community-realtime/internal/models"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation",
			err:        models.NewValidationError(models.ReasonEmptyBody, "message body is empty"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "empty_body",
		},
		{
			name:       "slow mode",
			err:        fmt.Errorf("send: %w", models.NewValidationError(models.ReasonSlowMode, "wait")),
			wantStatus: http.StatusTooManyRequests,
			wantCode:   "slow_mode",
		},
		{
			name:       "not found",
			err:        models.NewNotFoundError("room", "nowhere"),
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "permission",
			err:        models.NewPermissionError("delete message", "bob"),
			wantStatus: http.StatusForbidden,
			wantCode:   "permission_denied",
		},
		{
			name:       "echo error",
			err:        echo.NewHTTPError(http.StatusBadRequest, "bad input"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	e := echo.New()
	handler := ErrorHandler(zap.NewNop().Sugar())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
			handler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ResponseError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantCode, body.ErrorCode)
			assert.NotEmpty(t, body.ErrorMessage)
		})
	}
}
