package middleware

import (
	"reflect"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nguyentranbao-ct/community-realtime/pkg/util"
)

type MetricsConfig struct {
	Skipper             Skipper
	NormalizeHTTPStatus bool
	MetricsPath         string
}

const (
	httpRequestsDuration = "http_request_duration_seconds"
	notFoundPath         = "/not-found"
)

var DefaultMetricsConfig = MetricsConfig{
	Skipper:     DefaultSkipper,
	MetricsPath: "/metrics",
}

func normalizeHTTPStatus(status int) string {
	switch {
	case status < 200:
		return "1xx"
	case status < 300:
		return "2xx"
	case status < 400:
		return "3xx"
	case status < 500:
		return "4xx"
	}
	return "5xx"
}

func isNotFoundHandler(handler echo.HandlerFunc) bool {
	return reflect.ValueOf(handler).Pointer() == reflect.ValueOf(echo.NotFoundHandler).Pointer()
}

func Metrics() echo.MiddlewareFunc {
	return MetricsWithConfig(DefaultMetricsConfig)
}

// MetricsWithConfig records request latency by status, method and route,
// and serves the registry on MetricsPath.
func MetricsWithConfig(config MetricsConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	httpMetrics := mustHTTPMetrics()

	var promHandler echo.HandlerFunc
	if config.MetricsPath != "" {
		promHandler = echo.WrapHandler(promhttp.Handler())
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if promHandler != nil && req.URL.Path == config.MetricsPath {
				return promHandler(c)
			}
			if config.Skipper(c) {
				return next(c)
			}

			// route templates only, so unmatched paths cannot blow up cardinality
			path := c.Path()
			if isNotFoundHandler(c.Handler()) {
				path = notFoundPath
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := strconv.Itoa(c.Response().Status)
			if config.NormalizeHTTPStatus {
				status = normalizeHTTPStatus(c.Response().Status)
			}
			httpMetrics.WithLabelValues(status, req.Method, path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

func mustHTTPMetrics() *prometheus.HistogramVec {
	m, err := util.GetHistogramVec(httpRequestsDuration, "code", "method", "path")
	if err != nil {
		panic(err)
	}
	return m
}
