package middleware

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

const defaultMaxBodyLog = 4 << 10

// LogRequestConfig selects what gets logged per request.
type LogRequestConfig struct {
	Logger Logger
	// Enabled defaults to every request.
	Enabled func(c echo.Context) bool
	// SkipBodies drops request and response bodies from the entry.
	SkipBodies func(c echo.Context) bool
	// MaxBodyLog caps the bytes of each body kept in the entry. Message
	// pages can be large.
	MaxBodyLog int
	Extra      func(c echo.Context) []any
}

// LogRequest writes one entry per request with route, params, identity and
// bodies. The level follows the final status.
func LogRequest(config LogRequestConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		panic("LogRequest: logger is required")
	}
	if config.Enabled == nil {
		config.Enabled = func(echo.Context) bool { return true }
	}
	if config.SkipBodies == nil {
		config.SkipBodies = func(echo.Context) bool { return false }
	}
	if config.MaxBodyLog <= 0 {
		config.MaxBodyLog = defaultMaxBodyLog
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !config.Enabled(c) {
				return next(c)
			}

			start := time.Now()
			withBodies := !config.SkipBodies(c)

			var reqBody []byte
			var resBody *cappedBuffer
			if withBodies {
				reqBody = captureRequestBody(c.Request())
				resBody = &cappedBuffer{limit: config.MaxBodyLog}
				res := c.Response()
				res.Writer = &teeWriter{ResponseWriter: res.Writer, copy: resBody}
			}

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			entry := requestEntry(c, start)
			if withBodies {
				entry = appendJSON(entry, "request_body", capBytes(reqBody, config.MaxBodyLog))
				if isJSON(c.Response().Header().Get(echo.HeaderContentType)) {
					entry = appendJSON(entry, "response_body", resBody.Bytes())
				}
			}
			if config.Extra != nil {
				entry = append(entry, config.Extra(c)...)
			}

			status := c.Response().Status
			switch {
			case status >= http.StatusInternalServerError:
				if err != nil {
					entry = append(entry, "error", err.Error())
				}
				config.Logger.Errorw("request", entry...)
			case status >= http.StatusBadRequest:
				config.Logger.Warnw("request", entry...)
			default:
				config.Logger.Infow("request", entry...)
			}
			return nil
		}
	}
}

func requestEntry(c echo.Context, start time.Time) []any {
	req := c.Request()
	entry := []any{
		"status", c.Response().Status,
		"method", req.Method,
		"route", c.Path(),
		"uri", req.RequestURI,
		"latency_ms", time.Since(start).Milliseconds(),
		"real_ip", c.RealIP(),
		"request_id", GetRequestID(c),
	}
	if userID := GetUserID(c); userID != "" {
		entry = append(entry, "user_id", userID)
	}
	if names := c.ParamNames(); len(names) > 0 {
		params := make(map[string]string, len(names))
		for _, name := range names {
			params[name] = c.Param(name)
		}
		entry = append(entry, "params", params)
	}
	return entry
}

func captureRequestBody(req *http.Request) []byte {
	if req.Body == nil || !isJSON(req.Header.Get(echo.HeaderContentType)) {
		return nil
	}
	body, _ := io.ReadAll(req.Body)
	req.Body = io.NopCloser(bytes.NewReader(body))
	return body
}

// appendJSON keeps valid JSON bodies structured and falls back to text for
// anything truncated or malformed.
func appendJSON(entry []any, key string, body []byte) []any {
	if len(body) == 0 {
		return entry
	}
	if json.Valid(body) {
		return append(entry, key, json.RawMessage(body))
	}
	return append(entry, key, string(body))
}

func capBytes(b []byte, limit int) []byte {
	if len(b) > limit {
		return b[:limit]
	}
	return b
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(contentType, echo.MIMEApplicationJSON)
}

type cappedBuffer struct {
	bytes.Buffer
	limit int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.Len(); room > 0 {
		b.Buffer.Write(capBytes(p, room))
	}
	return len(p), nil
}

type teeWriter struct {
	http.ResponseWriter
	copy io.Writer
}

func (w *teeWriter) Write(p []byte) (int, error) {
	n, err := w.ResponseWriter.Write(p)
	_, _ = w.copy.Write(p[:n])
	return n, err
}

func (w *teeWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *teeWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return w.ResponseWriter.(http.Hijacker).Hijack()
}
