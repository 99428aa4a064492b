package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nguyentranbao-ct/community-realtime/internal/models"
)

var codeToHTTP = map[codes.Code]int{
	codes.InvalidArgument:   http.StatusBadRequest,
	codes.ResourceExhausted: http.StatusTooManyRequests,
	codes.NotFound:          http.StatusNotFound,
	codes.PermissionDenied:  http.StatusForbidden,
	codes.Unavailable:       http.StatusServiceUnavailable,
}

// ErrorHandler renders every error in the ResponseError envelope.
// Domain errors are mapped through their gRPC status code.
func ErrorHandler(log Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if err == nil || c.Response().Committed {
			return
		}

		resp := toResponseError(err)
		if resp.Status == http.StatusNotFound && isNotFoundHandler(c.Handler()) {
			resp.ErrorMessage = "no route matched"
		}
		if errors.Is(err, context.Canceled) && errors.Is(c.Request().Context().Err(), context.Canceled) {
			resp.Status = 499
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(resp.Status)
		} else {
			err = c.JSON(resp.Status, resp)
		}
		if err != nil {
			log.Errorw("could not respond", "code", resp.Status, "response_body", resp)
		}
	}
}

func toResponseError(err error) *ResponseError {
	var re *ResponseError
	if errors.As(err, &re) {
		return re
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return &ResponseError{
			Status:       he.Code,
			Err:          err,
			ErrorMessage: fmt.Sprint(he.Message),
		}
	}

	resp := &ResponseError{
		Status:       http.StatusInternalServerError,
		Err:          err,
		ErrorMessage: http.StatusText(http.StatusInternalServerError),
	}
	st, ok := status.FromError(err)
	if !ok {
		return resp
	}
	code, known := codeToHTTP[st.Code()]
	if !known {
		return resp
	}
	resp.Status = code
	resp.ErrorMessage = st.Message()
	resp.ErrorCode = errorCode(err, st.Code())
	return resp
}

func errorCode(err error, code codes.Code) string {
	if reason := models.ValidationReasonOf(err); reason != "" {
		return string(reason)
	}
	switch code {
	case codes.NotFound:
		return "not_found"
	case codes.PermissionDenied:
		return "permission_denied"
	}
	return "unavailable"
}
