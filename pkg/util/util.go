package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/prometheus/client_golang/prometheus"
)

// Remove returns values without every occurrence of value.
func Remove[T comparable](values []T, value T) []T {
	out := values[:0:0]
	for _, v := range values {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}

type nopLogger struct{}

func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Debugf(string, ...interface{}) {}

func NewRestyClient() *resty.Client {
	c := resty.
		New().
		SetRetryCount(3).
		SetLogger(nopLogger{}).
		SetTimeout(10 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			retry, _ := retryablehttp.DefaultRetryPolicy(r.Request.Context(), r.RawResponse, err)
			return retry
		})
	c.JSONMarshal = json.Marshal
	c.JSONUnmarshal = json.Unmarshal
	return c
}

// Ptr returns pointer of any value.
func Ptr[T any](t T) *T {
	return &t
}

func GetHistogramVec(name string, labels ...string) (*prometheus.HistogramVec, error) {
	metrics := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: name,
		Buckets: []float64{
			0.0005,
			0.001, // 1ms
			0.002,
			0.005,
			0.01, // 10ms
			0.02,
			0.05,
			0.1, // 100 ms
			0.2,
			0.5,
			1.0, // 1s
			2.0,
			5.0,
			10.0, // 10s
		},
	}, labels)
	if err := prometheus.Register(metrics); err != nil {
		var registeredErr prometheus.AlreadyRegisteredError
		if ok := errors.As(err, &registeredErr); ok {
			metrics, ok := registeredErr.ExistingCollector.(*prometheus.HistogramVec)
			if ok {
				return metrics, nil
			}
		}
		return nil, fmt.Errorf("register: %w %T", err, err)
	}

	return metrics, nil
}

// GetCounterVec registers a counter vector, reusing an already registered one with the same name.
func GetCounterVec(name, help string, labels ...string) (*prometheus.CounterVec, error) {
	metrics := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, labels)
	if err := prometheus.Register(metrics); err != nil {
		var registeredErr prometheus.AlreadyRegisteredError
		if errors.As(err, &registeredErr) {
			if existing, ok := registeredErr.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register: %w %T", err, err)
	}

	return metrics, nil
}

func MustCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	c, err := GetCounterVec(name, help, labels...)
	if err != nil {
		panic(err)
	}
	return c
}
