package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey is the context key under which the HTTP layer stores the request id.
const RequestIDKey = "x-request-id"

var (
	mu   sync.RWMutex
	base = zap.NewNop()
)

// Init replaces the process logger. format is "json" or "console".
func Init(level, format string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	conf := zap.NewProductionConfig()
	if format == "console" {
		conf = zap.NewDevelopmentConfig()
	}
	conf.Level = zap.NewAtomicLevelAt(lvl)
	l, err := conf.Build()
	if err != nil {
		return err
	}
	Set(l)
	return nil
}

func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
}

func Get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

func MustNamed(name string) *zap.SugaredLogger {
	return Get().Named(name).Sugar()
}

// For decorates l with the request id carried by ctx, if any.
func For(ctx context.Context, l *zap.SugaredLogger) *zap.SugaredLogger {
	if ctx == nil {
		return l
	}
	//lint:ignore SA1029 the request id middleware stores a plain string key
	if id, ok := ctx.Value(RequestIDKey).(string); ok && id != "" {
		return l.With("request_id", id)
	}
	return l
}
