// Package linkdrop provides a client for the linkdrop read API and webhook.
package linkdrop

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is a linkdrop API client.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new linkdrop client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("linkdrop error %d: %s", e.StatusCode, e.Message)
}

// doRequest performs an HTTP request and decodes a JSON response into out.
func (c *Client) doRequest(ctx context.Context, method, path string, body []byte, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &errResp)
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	return json.Unmarshal(respBody, out)
}

// LinksResponse is a chat's link set for one day.
type LinksResponse struct {
	ChatID int64    `json:"chat_id"`
	Date   string   `json:"date"`
	Links  []string `json:"links"`
	Count  int      `json:"count"`
}

// Links lists a chat's links for date (YYYY-MM-DD). An empty date means today (UTC).
func (c *Client) Links(ctx context.Context, chatID int64, date string) (*LinksResponse, error) {
	path := fmt.Sprintf("/chats/%d/links", chatID)
	if date != "" {
		path += "?date=" + url.QueryEscape(date)
	}

	var resp LinksResponse
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TopicResponse is a chat's closed-topic state.
type TopicResponse struct {
	ChatID           int64 `json:"chat_id"`
	Closed           bool  `json:"closed"`
	ExpiresInSeconds int64 `json:"expires_in_seconds,omitempty"`
}

// Topic reports whether link capture is stopped for a chat.
func (c *Client) Topic(ctx context.Context, chatID int64) (*TopicResponse, error) {
	var resp TopicResponse
	if err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/chats/%d/topic", chatID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// update mirrors the Telegram update shape the webhook reads.
type update struct {
	UpdateID int64 `json:"update_id"`
	Message  struct {
		MessageID int64  `json:"message_id"`
		Date      int64  `json:"date"`
		Chat      struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
}

// Send posts text to the webhook as if Telegram had delivered it, and
// returns the webhook's status.
func (c *Client) Send(ctx context.Context, chatID int64, text string) (string, error) {
	now := time.Now()

	var u update
	u.UpdateID = now.UnixNano()
	u.Message.MessageID = now.Unix()
	u.Message.Date = now.Unix()
	u.Message.Chat.ID = chatID
	u.Message.Text = text

	body, err := json.Marshal(u)
	if err != nil {
		return "", err
	}

	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doRequest(ctx, http.MethodPost, "/webhook", body, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// HealthResponse is the response from the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Region    string                 `json:"region,omitempty"`
	Checks    map[string]interface{} `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// Health checks server health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
