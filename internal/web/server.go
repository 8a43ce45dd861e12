package web

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/noahxzhu/hydrate/internal/hydration"
	"github.com/noahxzhu/hydrate/internal/model"
)

//go:embed templates/*
var templateFS embed.FS

type Tracker interface {
	Snapshot() hydration.Snapshot
	RecordIntake(amountMl int) (hydration.Snapshot, error)
}

type HistorySource interface {
	History() ([]model.HistoryEntry, error)
}

type SubscriptionStore interface {
	SaveSubscription(sub model.PushSubscription) error
}

type Refresher interface {
	Refresh()
}

type Options struct {
	Tracker        Tracker
	History        HistorySource
	Subscriptions  SubscriptionStore // nil disables /push/*
	Worker         Refresher
	Hub            *Hub
	Amounts        []int
	VAPIDPublicKey string
}

type Server struct {
	opts   Options
	router *http.ServeMux
}

func NewServer(opts Options) *Server {
	if opts.Hub == nil {
		opts.Hub = NewHub()
	}
	s := &Server{
		opts:   opts,
		router: http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleIndex)
	s.router.HandleFunc("/drink", s.handleDrink)
	s.router.HandleFunc("/history", s.handleHistory)

	s.router.HandleFunc("/api/state", s.handleState)
	s.router.HandleFunc("/api/intake", s.handleIntake)
	s.router.HandleFunc("/api/tick", s.handleTick)
	s.router.HandleFunc("/api/history", s.handleHistoryJSON)

	s.router.HandleFunc("/push/vapid", s.handleVapid)
	s.router.HandleFunc("/push/subscribe", s.handleSubscribe)
	s.router.HandleFunc("/ws", s.handleWS)
	s.router.HandleFunc("/sw.js", s.handleServiceWorker)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Pages

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.renderTemplate(w, "index.html", map[string]any{
		"Snap":    s.opts.Tracker.Snapshot(),
		"Amounts": s.opts.Amounts,
		"Push":    s.opts.VAPIDPublicKey != "",
	})
}

func (s *Server) handleDrink(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	amount, err := strconv.Atoi(r.FormValue("amount"))
	if err != nil {
		http.Error(w, "Invalid amount", 400)
		return
	}

	if _, err := s.opts.Tracker.RecordIntake(amount); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.opts.History.History()
	if err != nil {
		http.Error(w, "Failed to load history", 500)
		return
	}
	s.renderTemplate(w, "history.html", entries)
}

// JSON API

const maxJSONBody = 4 << 10

type intakeRequest struct {
	Amount int `json:"amount"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Method not allowed", 405)
		return
	}
	writeJSON(w, http.StatusOK, s.opts.Tracker.Snapshot())
}

func (s *Server) handleIntake(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}

	var req intakeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	snap, err := s.opts.Tracker.RecordIntake(req.Amount)
	if errors.Is(err, hydration.ErrInvalidAmount) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleTick is hit by the page when it becomes visible again, so a long
// suspend is reconciled without waiting for the next period.
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}
	s.opts.Worker.Refresh()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleHistoryJSON(w http.ResponseWriter, r *http.Request) {
	entries, err := s.opts.History.History()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load history"})
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Push

func (s *Server) handleVapid(w http.ResponseWriter, r *http.Request) {
	if s.opts.VAPIDPublicKey == "" {
		http.Error(w, "Push notifications not configured", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"publicKey": s.opts.VAPIDPublicKey})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", 405)
		return
	}
	if s.opts.Subscriptions == nil {
		http.Error(w, "Push notifications not configured", http.StatusServiceUnavailable)
		return
	}

	var sub model.PushSubscription
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil || sub.Endpoint == "" {
		http.Error(w, "Invalid subscription", 400)
		return
	}

	if err := s.opts.Subscriptions.SaveSubscription(sub); err != nil {
		slog.Error("Failed to save push subscription", "error", err)
		http.Error(w, "Failed to save subscription", 500)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	s.opts.Hub.serve(w, r, s.opts.Tracker.Snapshot())
}

func (s *Server) handleServiceWorker(w http.ResponseWriter, r *http.Request) {
	data, err := templateFS.ReadFile("templates/sw.js")
	if err != nil {
		http.Error(w, "Not found", 404)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) renderTemplate(w http.ResponseWriter, tmplName string, data interface{}) {
	tmpl, err := template.ParseFS(templateFS, "templates/"+tmplName)
	if err != nil {
		http.Error(w, fmt.Sprintf("Template error: %v", err), 500)
		return
	}
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, fmt.Sprintf("Execute error: %v", err), 500)
	}
}
