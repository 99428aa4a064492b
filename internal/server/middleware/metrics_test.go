package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func serve(e *echo.Echo, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestMetricsMiddleware(t *testing.T) {
	mustHTTPMetrics().Reset()

	e := echo.New()
	e.Use(Metrics())
	e.GET("/rooms/:id", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Param("id"))
	})
	e.GET("/boom", func(c echo.Context) error {
		return errors.New("internal error")
	})

	for i := 0; i < 10; i++ {
		serve(e, http.MethodGet, "/rooms/general")
		serve(e, http.MethodGet, "/rooms/random")
	}
	for i := 0; i < 4; i++ {
		serve(e, http.MethodGet, "/boom")
	}
	for i := 0; i < 3; i++ {
		serve(e, http.MethodGet, "/missing")
	}
	serve(e, http.MethodPost, "/missing")

	body := serve(e, http.MethodGet, "/metrics").Body.String()
	assert.Contains(t, body, `http_request_duration_seconds_count{code="200",method="GET",path="/rooms/:id"} 20`)
	assert.Contains(t, body, `http_request_duration_seconds_count{code="500",method="GET",path="/boom"} 4`)
	assert.Contains(t, body, `http_request_duration_seconds_count{code="404",method="GET",path="/not-found"} 3`)
	assert.Contains(t, body, `http_request_duration_seconds_count{code="404",method="POST",path="/not-found"} 1`)
}

func TestNormalizeHTTPStatus(t *testing.T) {
	assert.Equal(t, "1xx", normalizeHTTPStatus(101))
	assert.Equal(t, "2xx", normalizeHTTPStatus(204))
	assert.Equal(t, "3xx", normalizeHTTPStatus(302))
	assert.Equal(t, "4xx", normalizeHTTPStatus(429))
	assert.Equal(t, "5xx", normalizeHTTPStatus(503))
}
