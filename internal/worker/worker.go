package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/noahxzhu/hydrate/internal/hydration"
)

// Ticker is the part of the tracker the worker drives.
type Ticker interface {
	Tick() hydration.Snapshot
}

// Worker reconciles the tracker on a fixed period. A reminder can therefore be
// marked missed up to one period late.
type Worker struct {
	tracker    Ticker
	interval   time.Duration
	updateChan chan struct{}
}

func NewWorker(tracker Ticker, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Worker{
		tracker:    tracker,
		interval:   interval,
		updateChan: make(chan struct{}, 1),
	}
}

// Refresh asks the worker to reconcile now instead of waiting for the next tick.
func (w *Worker) Refresh() {
	select {
	case w.updateChan <- struct{}{}:
	default:
		// Channel already has a pending signal, no need to block
	}
}

func (w *Worker) Start(ctx context.Context) {
	slog.Info("Worker started", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.tick()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Worker stopped")
			return
		case <-w.updateChan:
			slog.Debug("Worker received refresh signal")
			w.tick()
		case <-ticker.C:
			w.tick()
		}
	}
}

func (w *Worker) tick() {
	snap := w.tracker.Tick()
	slog.Debug("Tick", "date", snap.DateKey, "intake_ml", snap.Intake, "next", snap.NextLabel())
}
