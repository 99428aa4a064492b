package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handle binds and validates Req before calling fn, then wraps the result
// in the success envelope. A *Response result is sent as is.
func Handle[Req any, Res any](fn func(c echo.Context, req Req) (Res, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req Req
		if err := BindAndValidate(c, &req); err != nil {
			return err
		}

		data, err := fn(c, req)
		if err != nil {
			return err
		}
		if c.Response().Committed {
			return nil
		}

		resp := &Response{
			Status:  http.StatusOK,
			Success: true,
			Data:    data,
		}
		if v, ok := any(data).(*Response); ok {
			resp = v
		}
		return c.JSON(resp.Status, resp)
	}
}

// HandleNoContent is Handle for operations without a result body.
func HandleNoContent[Req any](fn func(c echo.Context, req Req) error) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req Req
		if err := BindAndValidate(c, &req); err != nil {
			return err
		}
		if err := fn(c, req); err != nil {
			return err
		}
		if c.Response().Committed {
			return nil
		}
		return c.NoContent(http.StatusNoContent)
	}
}
