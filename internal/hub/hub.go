package hub

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/playgenz/livescore/internal/client"
	"github.com/playgenz/livescore/internal/metrics"
	"github.com/playgenz/livescore/pkg/models"
)

// Hub maintains the viewers of every match and fans deltas out to them
type Hub struct {
	// Registered clients by match id
	matches   map[string]map[*client.Client]bool
	clientsMu sync.RWMutex

	// Inbound deltas from the stream consumer
	broadcast chan models.Delta

	// Register requests from clients
	register chan *client.Client

	// Unregister requests from clients
	unregister chan *client.Client

	// Closed once Run returns
	done chan struct{}

	metrics *metrics.Metrics
	logger  *slog.Logger

	totalConnections int64
	totalMessages    int64
	metricsMu        sync.Mutex
}

// NewHub creates a new Hub instance
func NewHub(m *metrics.Metrics, logger *slog.Logger) *Hub {
	if m == nil {
		m = metrics.New(nil)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Hub{
		matches:    make(map[string]map[*client.Client]bool),
		broadcast:  make(chan models.Delta, 1000),
		register:   make(chan *client.Client),
		unregister: make(chan *client.Client),
		done:       make(chan struct{}),
		metrics:    m,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("hub started")

	go h.reportMetrics(ctx)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case delta := <-h.broadcast:
			h.broadcastDelta(delta)
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(c *client.Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *client.Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues a delta for the viewers of its match
func (h *Hub) Broadcast(delta models.Delta) {
	select {
	case h.broadcast <- delta:
	default:
		// Broadcast buffer full - drop message
		h.metrics.MessagesDropped.Inc()
		h.logger.Warn("broadcast buffer full, dropping delta", "match_id", delta.MatchID)
	}
}

// registerClient adds a client to its match's viewers
func (h *Hub) registerClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	viewers, ok := h.matches[c.MatchID]
	if !ok {
		viewers = make(map[*client.Client]bool)
		h.matches[c.MatchID] = viewers
		h.metrics.WatchedMatches.Inc()
	}
	viewers[c] = true
	h.metrics.Connections.Inc()
	h.incrementTotalConnections()

	h.logger.Info("client connected", "client_id", c.ID, "match_id", c.MatchID, "viewers", len(viewers))
}

// unregisterClient removes a client and closes its send queue
func (h *Hub) unregisterClient(c *client.Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	viewers, ok := h.matches[c.MatchID]
	if !ok || !viewers[c] {
		return
	}
	delete(viewers, c)
	close(c.Send)
	h.metrics.Connections.Dec()
	if len(viewers) == 0 {
		delete(h.matches, c.MatchID)
		h.metrics.WatchedMatches.Dec()
	}
	h.logger.Info("client disconnected", "client_id", c.ID, "match_id", c.MatchID, "viewers", len(viewers))
}

// broadcastDelta sends a delta to the viewers of its match. Rejections go
// only to the client that submitted the intent.
func (h *Hub) broadcastDelta(delta models.Delta) {
	h.clientsMu.RLock()
	clients := make([]*client.Client, 0, len(h.matches[delta.MatchID]))
	for c := range h.matches[delta.MatchID] {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	message := models.ServerMessage{
		Type:      models.MessageTypeDelta,
		MatchID:   delta.MatchID,
		Payload:   delta,
		Timestamp: time.Now(),
	}

	sent := 0
	dropped := 0

	for _, c := range clients {
		if delta.Error != nil && !c.Owns(delta.Error.IntentID) {
			continue
		}

		if c.TrySend(message) {
			sent++
		} else {
			dropped++
			// Client buffer full - they're too slow, disconnect them
			h.logger.Warn("client buffer full, disconnecting", "client_id", c.ID)
			go h.Unregister(c)
		}
	}

	if sent > 0 {
		h.metrics.MessagesBroadcast.Add(float64(sent))
		h.incrementTotalMessages()
	}
	if dropped > 0 {
		h.metrics.MessagesDropped.Add(float64(dropped))
	}
}

// GetMetrics returns hub metrics
func (h *Hub) GetMetrics() map[string]interface{} {
	h.clientsMu.RLock()
	activeClients := 0
	for _, viewers := range h.matches {
		activeClients += len(viewers)
	}
	watched := len(h.matches)
	h.clientsMu.RUnlock()

	h.metricsMu.Lock()
	totalConnections := h.totalConnections
	totalMessages := h.totalMessages
	h.metricsMu.Unlock()

	return map[string]interface{}{
		"active_clients":     activeClients,
		"watched_matches":    watched,
		"total_connections":  totalConnections,
		"total_messages":     totalMessages,
		"broadcast_capacity": cap(h.broadcast),
		"broadcast_usage":    len(h.broadcast),
	}
}

// GetClientCount returns the number of active clients
func (h *Hub) GetClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	n := 0
	for _, viewers := range h.matches {
		n += len(viewers)
	}
	return n
}

// ViewerCount returns the number of clients watching matchID
func (h *Hub) ViewerCount(matchID string) int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.matches[matchID])
}

// shutdown closes all client connections
func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	close(h.done)
	h.logger.Info("shutting down hub", "watched_matches", len(h.matches))

	for matchID, viewers := range h.matches {
		for c := range viewers {
			close(c.Send)
			h.metrics.Connections.Dec()
		}
		delete(h.matches, matchID)
		h.metrics.WatchedMatches.Dec()
	}
}

// reportMetrics periodically reports hub metrics
func (h *Hub) reportMetrics(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m := h.GetMetrics()
			h.logger.Info("hub metrics",
				"clients", m["active_clients"],
				"matches", m["watched_matches"],
				"total_connections", m["total_connections"],
				"messages", m["total_messages"])
		}
	}
}

// incrementTotalConnections safely increments the total connections counter
func (h *Hub) incrementTotalConnections() {
	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	h.totalConnections++
}

// incrementTotalMessages safely increments the total messages counter
func (h *Hub) incrementTotalMessages() {
	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	h.totalMessages++
}
