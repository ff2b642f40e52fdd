package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/playgenz/livescore/internal/cache"
	"github.com/playgenz/livescore/internal/client"
	"github.com/playgenz/livescore/internal/hub"
	"github.com/playgenz/livescore/internal/metrics"
	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/internal/registry"
	"github.com/playgenz/livescore/pkg/models"
)

// Scorecards is the canonical scorecard storage the relay reads and seeds
type Scorecards interface {
	Load(ctx context.Context, matchID string) (patch.Tree, error)
	Save(ctx context.Context, matchID string, state patch.Tree) error
	List(ctx context.Context) ([]string, error)
}

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// CreateMatchRequest seeds a new match
type CreateMatchRequest struct {
	Match  models.Match  `json:"match"`
	Format models.Format `json:"format,omitempty"`
}

// Deps are the collaborators of a Handler
type Deps struct {
	Hub        *hub.Hub
	Scorecards Scorecards
	Registry   *registry.Registry
	Sink       client.IntentSink
	Gatherer   prometheus.Gatherer
	Metrics    *metrics.Metrics
	Logger     *slog.Logger

	IntentsPerSecond float64
	IntentBurst      int
	AllowedOrigins   []string
}

// Handler manages HTTP endpoints
type Handler struct {
	deps     Deps
	ctx      context.Context
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new handler instance. ctx bounds the lifetime of
// WebSocket connections, which outlive their upgrade request.
func NewHandler(ctx context.Context, deps Deps) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if deps.Registry == nil {
		deps.Registry = registry.New()
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.NewRegistry()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(nil)
	}
	h := &Handler{
		deps:   deps,
		ctx:    ctx,
		logger: deps.Logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// HandleWebSocket upgrades HTTP connections to WebSocket for one match.
// The match's current scorecard is sent as the first frame.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("match_id")
	if matchID == "" {
		respondError(w, http.StatusBadRequest, "match_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if _, err := h.deps.Scorecards.Load(ctx, matchID); err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			respondError(w, http.StatusNotFound, "match not found")
			return
		}
		h.logger.Error("scorecard lookup failed", "match_id", matchID, "error", err)
		respondError(w, http.StatusServiceUnavailable, "scorecard unavailable")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade error", "error", err)
		return
	}

	clientID := uuid.New().String()
	c := client.NewClient(clientID, matchID, conn, h.deps.Hub, client.Options{
		Sink:    h.deps.Sink,
		Limiter: h.limiter(),
		Metrics: h.deps.Metrics,
		Logger:  h.logger,
	})

	// Register before reading the snapshot so no delta falls between them
	h.deps.Hub.Register(c)

	// Start client pumps (use handler context, not request context)
	go c.WritePump(h.ctx)
	go c.ReadPump(h.ctx)

	if state, err := h.deps.Scorecards.Load(h.ctx, matchID); err == nil {
		c.TrySend(models.ServerMessage{
			Type:      models.MessageTypeSnapshot,
			MatchID:   matchID,
			Payload:   state,
			Timestamp: time.Now(),
		})
	}
}

// HandleHealth returns service health
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"service":        "scorecard-relay",
		"active_clients": h.deps.Hub.GetClientCount(),
		"timestamp":      time.Now().UTC(),
	})
}

// HandleStats returns hub statistics
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.deps.Hub.GetMetrics())
}

// HandleMetrics serves Prometheus metrics
func (h *Handler) HandleMetrics() http.Handler {
	return promhttp.HandlerFor(h.deps.Gatherer, promhttp.HandlerOpts{})
}

// GetScorecard returns the full canonical scorecard of a match
func (h *Handler) GetScorecard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	matchID := chi.URLParam(r, "matchID")
	state, err := h.deps.Scorecards.Load(ctx, matchID)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			respondError(w, http.StatusNotFound, "match not found")
			return
		}
		h.logger.Error("failed to retrieve scorecard", "match_id", matchID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to retrieve scorecard")
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// ListMatches returns the ids of every match with a scorecard, with live viewer counts
func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ids, err := h.deps.Scorecards.List(ctx)
	if err != nil {
		h.logger.Error("failed to list matches", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}

	matches := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		matches = append(matches, map[string]interface{}{
			"id":      id,
			"viewers": h.deps.Hub.ViewerCount(id),
		})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}

// CreateMatch seeds the scorecard of a new match
func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req CreateMatchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Match.ID == "" {
		req.Match.ID = uuid.NewString()
	}

	state, err := h.deps.Registry.Seed(req.Match, registry.SeedOptions{Format: req.Format})
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrUnknownSport), errors.Is(err, registry.ErrInvalidMatch):
			respondError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to seed match")
		}
		return
	}

	if _, err := h.deps.Scorecards.Load(ctx, req.Match.ID); err == nil {
		respondError(w, http.StatusConflict, "match already exists")
		return
	} else if !errors.Is(err, cache.ErrNotFound) {
		respondError(w, http.StatusInternalServerError, "failed to check match")
		return
	}

	if err := h.deps.Scorecards.Save(ctx, req.Match.ID, state); err != nil {
		h.logger.Error("failed to save scorecard", "match_id", req.Match.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save match")
		return
	}

	h.logger.Info("match created", "match_id", req.Match.ID, "sport", req.Match.SportType)
	respondJSON(w, http.StatusCreated, state)
}

// limiter builds the per-connection intent limiter
func (h *Handler) limiter() *rate.Limiter {
	if h.deps.IntentsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := h.deps.IntentBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(h.deps.IntentsPerSecond), burst)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.deps.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.deps.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
