package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

var DefaultSkipper = func(c echo.Context) bool {
	return false
}

type Skipper func(c echo.Context) bool

// Logger is satisfied by *zap.SugaredLogger.
type Logger interface {
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

type Response struct {
	Status  int         `json:"-"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

type ResponseError struct {
	Status       int         `json:"-"`
	Err          error       `json:"-"`
	Success      bool        `json:"success"`
	ErrorCode    string      `json:"error_code,omitempty"`
	ErrorMessage string      `json:"error_message,omitempty"`
	ErrorData    interface{} `json:"error_data,omitempty"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("status: %d, code: %s; message: %+v", e.Status, e.ErrorCode, e.Err)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}
