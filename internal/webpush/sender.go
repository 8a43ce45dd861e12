package webpush

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/noahxzhu/hydrate/internal/model"
	"github.com/noahxzhu/hydrate/internal/notify"
)

// SubscriptionStore is where the dashboard's push subscriptions live.
type SubscriptionStore interface {
	Subscriptions() ([]model.PushSubscription, error)
	DeleteSubscription(endpoint string) error
}

// Payload is what the service worker receives.
type Payload struct {
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Tag   string         `json:"tag,omitempty"`
	Data  map[string]any `json:"data,omitempty"`
}

type Sender struct {
	store   SubscriptionStore
	options webpush.Options
}

func NewSender(store SubscriptionStore, subject, publicKey, privateKey string, ttl int) *Sender {
	return &Sender{
		store: store,
		options: webpush.Options{
			Subscriber:      subject,
			VAPIDPublicKey:  publicKey,
			VAPIDPrivateKey: privateKey,
			TTL:             ttl,
		},
	}
}

// SetHTTPClient overrides the client used to reach push services.
func (s *Sender) SetHTTPClient(c webpush.HTTPClient) {
	s.options.HTTPClient = c
}

func (s *Sender) PublicKey() string { return s.options.VAPIDPublicKey }

func (s *Sender) Name() string { return "webpush" }

// Send pushes msg to every stored subscription. Subscriptions the push service
// reports as gone (404/410) or as signed with other keys (403) are removed.
func (s *Sender) Send(ctx context.Context, msg notify.Message) error {
	subs, err := s.store.Subscriptions()
	if err != nil {
		return fmt.Errorf("failed to fetch subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	payload, err := json.Marshal(Payload{
		Title: msg.Title,
		Body:  msg.Body,
		Tag:   "hydrate-" + string(msg.Kind),
		Data:  msg.Data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	opts := s.options
	successCount, failCount := 0, 0

	for _, sub := range subs {
		resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.Keys.P256dh,
				Auth:   sub.Keys.Auth,
			},
		}, &opts)
		if err != nil {
			slog.Warn("Push send failed", "endpoint", sub.Endpoint, "error", err)
			failCount++
			continue
		}

		status := resp.StatusCode
		if status >= 400 {
			body, _ := io.ReadAll(resp.Body)
			slog.Warn("Push service error", "endpoint", sub.Endpoint, "status", status, "body", string(body))
		}
		resp.Body.Close()

		switch {
		case status == http.StatusGone || status == http.StatusNotFound || status == http.StatusForbidden:
			if err := s.store.DeleteSubscription(sub.Endpoint); err != nil {
				slog.Error("Failed to remove stale subscription", "endpoint", sub.Endpoint, "error", err)
			} else {
				slog.Info("Removed stale subscription", "endpoint", sub.Endpoint, "status", status)
			}
			failCount++
		case status >= 400:
			failCount++
		default:
			successCount++
		}
	}

	if successCount == 0 && failCount > 0 {
		return fmt.Errorf("failed to send any push notifications (attempted %d)", failCount)
	}
	return nil
}
