package middleware

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/cstockton/go-conv"
	"github.com/labstack/echo/v4"
)

const (
	HeaderUserID = "X-User-ID"
	userIDKey    = "user_id"
)

// BindAndValidate binds path params, query, body and `header:"..."` tagged
// fields into req, then validates it. Invalid requests are answered with 400.
func BindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return err
	}

	if err := bindHeader(c.Request().Header, req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return nil
}

// Identity exposes the caller id sent by the upstream gateway.
// Authentication happens before requests reach this service.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id := c.Request().Header.Get(HeaderUserID); id != "" {
				c.Set(userIDKey, id)
			}
			return next(c)
		}
	}
}

func GetUserID(c echo.Context) string {
	id, _ := c.Get(userIDKey).(string)
	return id
}

// bindHeader decodes http headers into fields tagged `header:"<header_name>"`.
// dst must be a pointer to a struct.
func bindHeader(header http.Header, dst interface{}) error {
	return bindStruct(dst, "header", func(name string) (interface{}, bool) {
		values := header.Values(name)
		if len(values) == 0 {
			return nil, false
		}
		return values[0], true
	})
}

// bindStruct converts the values returned by lookup into the tagged fields.
// Fields whose value is absent keep what the body binder put there.
func bindStruct(dst interface{}, tagName string, lookup func(tagValue string) (interface{}, bool)) error {
	ptr := reflect.ValueOf(dst)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind %s: want pointer to struct, got %T", tagName, dst)
	}

	indirect := ptr.Elem()
	structType := indirect.Type()
	for i := 0; i < structType.NumField(); i++ {
		structField := structType.Field(i)
		tagValue := structField.Tag.Get(tagName)
		if tagValue == "" || tagValue == "-" {
			continue
		}

		value, ok := lookup(tagValue)
		if !ok {
			continue
		}
		field := indirect.Field(i)
		if err := conv.Infer(field, value); err != nil {
			return fmt.Errorf("cannot parse %s %q into %s.%s: %s",
				tagName, tagValue, structType.Name(), structField.Name, err)
		}
	}

	return nil
}
