package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noahxzhu/hydrate/internal/config"
	"github.com/noahxzhu/hydrate/internal/hydration"
	"github.com/noahxzhu/hydrate/internal/notify"
	"github.com/noahxzhu/hydrate/internal/pushover"
	"github.com/noahxzhu/hydrate/internal/storage"
	"github.com/noahxzhu/hydrate/internal/web"
	"github.com/noahxzhu/hydrate/internal/webhook"
	"github.com/noahxzhu/hydrate/internal/webpush"
	"github.com/noahxzhu/hydrate/internal/worker"
)

func main() {
	// Setup structured logger (JSON handler)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	configPath := os.Getenv("HYDRATE_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	// Load Config
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Init Storage
	store := storage.NewStore(cfg.Storage.FilePath)
	history, err := storage.OpenBoltStore(cfg.Storage.HistoryPath)
	if err != nil {
		slog.Error("Failed to open history store", "error", err)
		os.Exit(1)
	}
	defer history.Close()

	// Init notification channels
	hub := web.NewHub()
	channels := []notify.Channel{hub}
	if cfg.Pushover.Enabled() {
		channels = append(channels, pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.User))
	}
	if cfg.Webhook.Enabled() {
		channels = append(channels, webhook.NewClient(cfg.Webhook.URL, cfg.Webhook.Token, cfg.Webhook.EventType))
	}
	var vapidPublicKey string
	var subscriptions web.SubscriptionStore
	if cfg.WebPush.Enabled() {
		sender := webpush.NewSender(history, cfg.WebPush.Subject, cfg.WebPush.PublicKey, cfg.WebPush.PrivateKey, cfg.WebPush.TTL)
		channels = append(channels, sender)
		vapidPublicKey = sender.PublicKey()
		subscriptions = history
	}
	for _, ch := range channels {
		slog.Info("Notification channel enabled", "channel", ch.Name())
	}
	dispatcher := notify.NewDispatcher(cfg.Webhook.Timeout, channels...)

	// Init Tracker
	tracker := hydration.NewTracker(cfg.Settings(), store, history, dispatcher)
	tracker.SetOnUpdate(func(snap hydration.Snapshot) {
		hub.Broadcast("state", snap)
	})
	tracker.Open()

	// Init Worker
	w := worker.NewWorker(tracker, cfg.Hydration.TickInterval)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start Worker
	go w.Start(ctx)

	// Init Web Server
	srv := web.NewServer(web.Options{
		Tracker:        tracker,
		History:        history,
		Subscriptions:  subscriptions,
		Worker:         w,
		Hub:            hub,
		Amounts:        cfg.Hydration.Amounts,
		VAPIDPublicKey: vapidPublicKey,
	})
	httpServer := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: srv,
	}

	// Start HTTP Server
	go func() {
		slog.Info("Starting server", "port", cfg.Server.Port, "url", "http://localhost"+cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down...")
	cancel() // Stop worker

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	dispatcher.Close(shutdownCtx)
	slog.Info("Server exited")
}
