package pushover

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/noahxzhu/hydrate/internal/notify"
)

const defaultAPIURL = "https://api.pushover.net/1/messages.json"

type Client struct {
	Token  string
	User   string
	APIURL string
	HTTP   *http.Client
}

func NewClient(token, user string) *Client {
	return &Client{
		Token:  token,
		User:   user,
		APIURL: defaultAPIURL,
		HTTP:   http.DefaultClient,
	}
}

func (c *Client) Name() string { return "pushover" }

func (c *Client) Send(ctx context.Context, msg notify.Message) error {
	return c.SendMessage(ctx, msg.Title, msg.Body, priority(msg.Kind))
}

func (c *Client) SendMessage(ctx context.Context, title, message string, priority int) error {
	params := url.Values{}
	params.Set("token", c.Token)
	params.Set("user", c.User)
	params.Set("title", title)
	params.Set("message", message)
	params.Set("priority", fmt.Sprint(priority))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pushover api error: status %s, body %s", resp.Status, string(body))
	}

	return nil
}

// Missed reminders go out quietly; everything else uses normal priority.
func priority(k notify.Kind) int {
	if k == notify.KindMissed {
		return -1
	}
	return 0
}
