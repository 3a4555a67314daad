package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/onnwee/chat-celebrator/celebrate"
	"github.com/onnwee/chat-celebrator/telemetry"
)

// Engine is the slice of the celebration engine the HTTP surface needs.
type Engine interface {
	Celebrate(message string) bool
	Snapshot() celebrate.Snapshot
}

// Store is the optional celebration history backend. A nil Store means
// history is disabled and the endpoints degrade gracefully.
type Store interface {
	Ping(ctx context.Context) error
	Recent(ctx context.Context, n int) ([]celebrate.Celebration, error)
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	eng       Engine
	store     Store
	hub       *Hub
	channel   string
	startedAt time.Time
}

// NewHandlers creates the handler set.
func NewHandlers(eng Engine, store Store, hub *Hub, channel string) *Handlers {
	return &Handlers{
		eng:       eng,
		store:     store,
		hub:       hub,
		channel:   channel,
		startedAt: time.Now(),
	}
}

// HandleHealthz reports liveness. With a history store configured it also
// pings the database so orchestrators see DB outages.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Ping(ctx); err != nil {
			telemetry.LoggerWithCorr(r.Context()).Error("healthz db ping failed", slog.Any("err", err), slog.String("component", "server"))
			http.Error(w, "db unreachable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// statusResponse is the /status payload.
type statusResponse struct {
	Channel              string                  `json:"channel"`
	UptimeSeconds        int64                   `json:"uptime_seconds"`
	Keywords             []string                `json:"keywords"`
	CelebratedMilestones []int                   `json:"celebrated_milestones"`
	LastViewerCount      int                     `json:"last_viewer_count"`
	PendingVisuals       int                     `json:"pending_visuals"`
	OverlayClients       int                     `json:"overlay_clients"`
	Recent               []celebrate.Celebration `json:"recent,omitempty"`
}

// HandleStatus reports trigger state, connected overlay clients, and (when
// history is enabled) the most recent celebrations.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	snap := h.eng.Snapshot()
	resp := statusResponse{
		Channel:              h.channel,
		UptimeSeconds:        int64(time.Since(h.startedAt).Seconds()),
		Keywords:             snap.Keywords,
		CelebratedMilestones: snap.CelebratedMilestones,
		LastViewerCount:      snap.LastViewerCount,
		PendingVisuals:       snap.PendingVisuals,
		OverlayClients:       h.hub.ClientCount(),
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		recent, err := h.store.Recent(ctx, 10)
		if err != nil {
			telemetry.LoggerWithCorr(r.Context()).Warn("status recent query failed", slog.Any("err", err), slog.String("component", "server"))
		} else {
			resp.Recent = recent
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// celebrateRequest is the /celebrate body. An empty message uses the
// default manual celebration text.
type celebrateRequest struct {
	Message string `json:"message"`
}

// HandleCelebrate queues a manual celebration.
func (h *Handlers) HandleCelebrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req celebrateRequest
	if r.Body != nil {
		// Body is optional; only a malformed body is an error.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid json body", http.StatusBadRequest)
			return
		}
	}
	if req.Message == "" {
		req.Message = "Manual celebration! 🎉"
	}

	if !h.eng.Celebrate(req.Message) {
		http.Error(w, "celebration queue full", http.StatusServiceUnavailable)
		return
	}

	telemetry.LoggerWithCorr(r.Context()).Info("manual celebration queued", slog.String("message", req.Message), slog.String("component", "server"))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "queued"})
}
