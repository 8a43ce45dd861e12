package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/noahxzhu/hydrate/internal/model"
)

type Kind string

const (
	KindDue         Kind = "due"
	KindMissed      Kind = "missed"
	KindMilestone   Kind = "milestone"
	KindGoalReached Kind = "goal_reached"
)

// Message is what every channel delivers.
type Message struct {
	ID    string         `json:"id"`
	Kind  Kind           `json:"kind"`
	Title string         `json:"title"`
	Body  string         `json:"body"`
	Data  map[string]any `json:"data,omitempty"`
}

// Channel is one delivery route (Pushover, webhook, browser push, live feed).
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Dispatcher implements hydration.Notifier. Each alert is handed to every
// channel on its own goroutine; the caller never waits and failures are only
// logged.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration

	mu     sync.Mutex
	closed bool
	wg     conc.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

func NewDispatcher(timeout time.Duration, channels ...Channel) *Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		channels: channels,
		timeout:  timeout,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (d *Dispatcher) NotifyDue(r model.Reminder) {
	d.dispatch(Message{
		Kind:  KindDue,
		Title: "Time to drink water",
		Body:  fmt.Sprintf("Drink %d ml now (%s reminder)", r.TargetAmount, r.Clock()),
		Data:  map[string]any{"time": r.Time},
	})
}

func (d *Dispatcher) NotifyMissed(r model.Reminder) {
	d.dispatch(Message{
		Kind:  KindMissed,
		Title: "Reminder missed",
		Body:  fmt.Sprintf("You missed the %s reminder", r.Clock()),
		Data:  map[string]any{"time": r.Time},
	})
}

func (d *Dispatcher) NotifyMilestone(percent int) {
	d.dispatch(Message{
		Kind:  KindMilestone,
		Title: fmt.Sprintf("%d%% of your daily goal", percent),
		Body:  fmt.Sprintf("You are %d%% of the way there. Keep going!", percent),
		Data:  map[string]any{"percent": percent},
	})
}

func (d *Dispatcher) NotifyGoalReached() {
	d.dispatch(Message{
		Kind:  KindGoalReached,
		Title: "Daily goal reached",
		Body:  "You hit your hydration goal for today.",
	})
}

func (d *Dispatcher) dispatch(msg Message) {
	msg.ID = uuid.New().String()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		slog.Warn("Dispatcher closed, dropping notification", "kind", msg.Kind)
		return
	}

	for _, ch := range d.channels {
		d.wg.Go(func() {
			ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
			defer cancel()
			if err := ch.Send(ctx, msg); err != nil {
				slog.Error("Notification delivery failed", "channel", ch.Name(), "kind", msg.Kind, "error", err)
				return
			}
			slog.Info("Notification delivered", "channel", ch.Name(), "kind", msg.Kind, "id", msg.ID)
		})
	}
}

// Close stops accepting alerts and waits for in-flight deliveries until ctx
// expires, after which they are cancelled.
func (d *Dispatcher) Close(ctx context.Context) {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		if r := d.wg.WaitAndRecover(); r != nil {
			slog.Error("Notification delivery panicked", "panic", r.Value)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		d.cancel()
		<-done
	}
	d.cancel()
}
