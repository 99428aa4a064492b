package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindHeader(t *testing.T) {
	type identity struct {
		UserID  string `header:"x-user-id"`
		Service string `header:"service"`

		Ignored string `header:"-"`
		Plain   bool
	}

	type numbers struct {
		Page    int64   `header:"page"`
		Limit   uint64  `header:"limit"`
		Offset  int64   `header:"offset"`
		Weight  float32 `header:"weight"`
		Untyped string  `header:"untyped"`
	}

	tests := []struct {
		name    string
		header  map[string]string
		out     interface{}
		want    interface{}
		wantErr bool
	}{
		{
			name: "strings",
			header: map[string]string{
				"x-user-id": "alice",
				"service":   "gateway",
				"ignored":   "nope",
				"plain":     "true",
			},
			out:  new(identity),
			want: &identity{UserID: "alice", Service: "gateway"},
		},
		{
			name: "numbers",
			header: map[string]string{
				"page":    "9",
				"limit":   "1007",
				"offset":  "-32",
				"weight":  "100.5",
				"untyped": "rose",
			},
			out:  new(numbers),
			want: &numbers{Page: 9, Limit: 1007, Offset: -32, Weight: 100.5, Untyped: "rose"},
		},
		{
			name:    "unparsable",
			header:  map[string]string{"page": "nine"},
			out:     new(numbers),
			want:    &numbers{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			for k, v := range tt.header {
				header.Set(k, v)
			}
			err := bindHeader(header, tt.out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tt.out)
		})
	}
}

func TestBindAndValidate(t *testing.T) {
	type request struct {
		RoomID string `param:"id" validate:"required"`
		UserID string `header:"x-user-id" json:"-" validate:"required"`
		Body   string `json:"body" validate:"required"`
	}

	e := echo.New()
	e.Validator = NewValidator()

	newContext := func(body, user string) echo.Context {
		req := httptest.NewRequest(http.MethodPost, "/rooms/general/messages", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if user != "" {
			req.Header.Set(HeaderUserID, user)
		}
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetParamNames("id")
		c.SetParamValues("general")
		return c
	}

	var got request
	require.NoError(t, BindAndValidate(newContext(`{"body":"hi"}`, "alice"), &got))
	assert.Equal(t, request{RoomID: "general", UserID: "alice", Body: "hi"}, got)

	err := BindAndValidate(newContext(`{"body":"hi"}`, ""), &request{})
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestIdentity(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, "bob")
	c := e.NewContext(req, httptest.NewRecorder())

	var seen string
	err := Identity()(func(c echo.Context) error {
		seen = GetUserID(c)
		return nil
	})(c)
	require.NoError(t, err)
	assert.Equal(t, "bob", seen)
}
