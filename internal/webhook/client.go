package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/noahxzhu/hydrate/internal/notify"
)

// Client posts alerts to a dispatch endpoint in the repository_dispatch
// shape: {"event_type": ..., "client_payload": {...}}.
type Client struct {
	URL       string
	Token     string
	EventType string
	HTTP      *http.Client
}

func NewClient(url, token, eventType string) *Client {
	return &Client{
		URL:       url,
		Token:     token,
		EventType: eventType,
		HTTP:      http.DefaultClient,
	}
}

type dispatchBody struct {
	EventType     string         `json:"event_type"`
	ClientPayload notify.Message `json:"client_payload"`
}

func (c *Client) Name() string { return "webhook" }

func (c *Client) Send(ctx context.Context, msg notify.Message) error {
	body, err := json.Marshal(dispatchBody{EventType: c.EventType, ClientPayload: msg})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-Hydrate-Delivery", msg.ID)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook error: status %s, body %s", resp.Status, string(b))
	}
	return nil
}
