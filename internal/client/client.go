package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/playgenz/livescore/internal/metrics"
	"github.com/playgenz/livescore/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// Buffer size for outbound messages
	sendBufferSize = 256

	// Intents awaiting a possible rejection
	maxPending = 256
)

// Hub defines the interface for the broadcast hub
type Hub interface {
	Unregister(client *Client)
}

// IntentSink receives intents submitted by scorers
type IntentSink interface {
	PublishIntent(ctx context.Context, intent models.Intent) error
}

// Client represents a viewer or scorer connection to one match
type Client struct {
	ID      string
	MatchID string
	conn    *websocket.Conn
	Send    chan models.ServerMessage // Exported for hub access
	hub     Hub
	sink    IntentSink
	limiter *rate.Limiter
	metrics *metrics.Metrics
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]struct{}

	connectedAt      time.Time
	messagesSent     int64
	messagesReceived int64
	lastMessageAt    time.Time
	mu               sync.Mutex
}

// Options are the optional collaborators of a Client
type Options struct {
	Sink    IntentSink
	Limiter *rate.Limiter
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

// NewClient creates a new client instance. A nil Sink makes the connection read-only.
func NewClient(id, matchID string, conn *websocket.Conn, hub Hub, opts Options) *Client {
	if opts.Limiter == nil {
		opts.Limiter = rate.NewLimiter(rate.Inf, 0)
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		ID:          id,
		MatchID:     matchID,
		conn:        conn,
		Send:        make(chan models.ServerMessage, sendBufferSize),
		hub:         hub,
		sink:        opts.Sink,
		limiter:     opts.Limiter,
		metrics:     opts.Metrics,
		logger:      opts.Logger.With("client_id", id, "match_id", matchID),
		pending:     make(map[string]struct{}),
		connectedAt: time.Now(),
	}
}

// ReadPump pumps messages from the WebSocket connection to the intent sink
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
			var msg models.ClientMessage
			if err := c.conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					c.logger.Warn("unexpected close", "error", err)
				}
				return
			}

			c.updateReceived()
			c.handleClientMessage(ctx, msg)
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message, ok := <-c.Send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Warn("write error", "error", err)
				return
			}

			c.updateSent()

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend sends a message to the client (non-blocking)
// Returns true if sent, false if buffer is full
func (c *Client) TrySend(msg models.ServerMessage) bool {
	select {
	case c.Send <- msg:
		return true
	default:
		// Buffer full - client is too slow
		return false
	}
}

// Owns reports whether this client submitted intentID and forgets it
func (c *Client) Owns(intentID string) bool {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	if _, ok := c.pending[intentID]; !ok {
		return false
	}
	delete(c.pending, intentID)
	return true
}

func (c *Client) track(intentID string) {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	if len(c.pending) >= maxPending {
		// the oldest intents have long since been answered
		c.pending = make(map[string]struct{})
	}
	c.pending[intentID] = struct{}{}
}

// GetStats returns connection statistics
func (c *Client) GetStats() models.ConnectionStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	bufferUtilization := float64(len(c.Send)) / float64(sendBufferSize) * 100.0

	return models.ConnectionStats{
		ClientID:          c.ID,
		MatchID:           c.MatchID,
		ConnectedAt:       c.connectedAt,
		MessagesSent:      c.messagesSent,
		MessagesReceived:  c.messagesReceived,
		LastMessageAt:     c.lastMessageAt,
		BufferSize:        sendBufferSize,
		BufferUtilization: bufferUtilization,
	}
}

// handleClientMessage processes messages from the client
func (c *Client) handleClientMessage(ctx context.Context, msg models.ClientMessage) {
	switch msg.Type {
	case models.MessageTypeIntent:
		c.handleIntent(ctx, msg)
	case models.MessageTypeHeartbeat:
		c.sendHeartbeat()
	default:
		c.sendError("unknown_message_type", fmt.Sprintf("unknown message type: %s", msg.Type), msg.IntentID)
	}
}

// handleIntent forwards a scorer intent to the engine
func (c *Client) handleIntent(ctx context.Context, msg models.ClientMessage) {
	if c.sink == nil {
		c.sendError("read_only", "this connection cannot submit intents", msg.IntentID)
		return
	}
	if msg.MatchID != "" && msg.MatchID != c.MatchID {
		c.sendError("wrong_match", fmt.Sprintf("connection is bound to match %s", c.MatchID), msg.IntentID)
		return
	}
	if msg.Route == "" || len(msg.Payload) == 0 || !json.Valid(msg.Payload) {
		c.sendError("invalid_intent", "intent needs a route and a JSON payload", msg.IntentID)
		return
	}
	if !c.limiter.Allow() {
		c.metrics.IntentsThrottled.Inc()
		c.sendError("rate_limited", "too many intents, slow down", msg.IntentID)
		return
	}

	intent := models.Intent{
		ID:         msg.IntentID,
		MatchID:    c.MatchID,
		Route:      msg.Route,
		Payload:    msg.Payload,
		ReceivedAt: time.Now().UTC(),
	}
	if intent.ID == "" {
		intent.ID = uuid.NewString()
	}

	c.track(intent.ID)
	if err := c.sink.PublishIntent(ctx, intent); err != nil {
		c.Owns(intent.ID)
		c.logger.Error("failed to publish intent", "intent_id", intent.ID, "error", err)
		c.sendError("unavailable", "scoring engine unavailable", intent.ID)
		return
	}
	c.metrics.IntentsForwarded.Inc()
	c.logger.Debug("intent forwarded", "intent_id", intent.ID, "route", intent.Route)
}

// sendHeartbeat sends a heartbeat response
func (c *Client) sendHeartbeat() {
	stats := c.GetStats()
	c.TrySend(models.ServerMessage{
		Type:      models.MessageTypeHeartbeat,
		MatchID:   c.MatchID,
		Payload:   stats,
		Timestamp: time.Now(),
	})
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message, intentID string) {
	c.TrySend(models.ServerMessage{
		Type:    models.MessageTypeError,
		MatchID: c.MatchID,
		Payload: models.ErrorMessage{
			Code:     code,
			Message:  message,
			IntentID: intentID,
		},
		Timestamp: time.Now(),
	})
}

// updateSent increments the sent message counter
func (c *Client) updateSent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messagesSent++
	c.lastMessageAt = time.Now()
}

// updateReceived increments the received message counter
func (c *Client) updateReceived() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messagesReceived++
	c.lastMessageAt = time.Now()
}
