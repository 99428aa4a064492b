package socket

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/nguyentranbao-ct/community-realtime/internal/config"
	"github.com/nguyentranbao-ct/community-realtime/pkg/logger"
	"github.com/nguyentranbao-ct/community-realtime/pkg/util"
)

// Client talks to the socket gateway, which fans events out to connected devices.
type Client struct {
	baseURL  string
	platform string
	rest     *resty.Client
}

type Event struct {
	UserID   string `json:"user_id"`
	Platform string `json:"platform,omitempty"`
	Name     string `json:"name"`
	Data     any    `json:"data"`
}

type SendEventsRequest struct {
	Events []Event `json:"events"`
}

type SendEventsResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func NewClient(conf *config.Config) *Client {
	return &Client{
		baseURL:  conf.Socket.BaseURL,
		platform: conf.Socket.Platform,
		rest:     util.NewRestyClient(),
	}
}

// Enabled reports whether a gateway is configured at all.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

func (c *Client) SendEvents(ctx context.Context, events []Event) error {
	if len(events) == 0 || !c.Enabled() {
		return nil
	}

	var result SendEventsResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(SendEventsRequest{Events: events}).
		SetResult(&result).
		SetError(&result).
		Post(c.baseURL + "/v1/events")
	if err != nil {
		return fmt.Errorf("send events: %w", err)
	}
	if resp.IsError() {
		if result.Error != "" {
			return fmt.Errorf("socket server error: %s", result.Error)
		}
		return fmt.Errorf("socket server returned status %d", resp.StatusCode())
	}
	if !result.Success {
		return fmt.Errorf("socket server returned success=false: %s", result.Error)
	}

	logger.For(ctx, logger.MustNamed("socket")).Debugw("sent events to socket server", "event_count", len(events))
	return nil
}

// fanout builds one event per recipient, skipping the excluded user.
func (c *Client) fanout(userIDs []string, exclude, name string, data any) []Event {
	events := make([]Event, 0, len(userIDs))
	for _, userID := range userIDs {
		if userID == "" || userID == exclude {
			continue
		}
		events = append(events, Event{
			UserID:   userID,
			Platform: c.platform,
			Name:     name,
			Data:     data,
		})
	}
	return events
}
