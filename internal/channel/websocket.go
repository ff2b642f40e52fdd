package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/internal/retry"
	"github.com/playgenz/livescore/pkg/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Snapshots carry a whole scorecard
	maxMessageSize = 1 << 20

	// Buffer size for outbound intents
	sendBufferSize = 64
)

// WebSocket is a Channel backed by a relay WebSocket connection
type WebSocket struct {
	relayURL string
	dialer   *websocket.Dialer
	retry    *retry.RetryPolicy
	logger   *slog.Logger

	mu       sync.Mutex
	sess     *session
	onUpdate UpdateHandler
	onReject RejectHandler
}

// session is one connection to the relay
type session struct {
	id        string
	matchID   string
	conn      *websocket.Conn
	send      chan models.ClientMessage
	done      chan struct{}
	closeOnce sync.Once
}

// NewWebSocket creates a channel dialing relayURL, which may use an http(s) or ws(s) scheme
func NewWebSocket(relayURL string, policy *retry.RetryPolicy, logger *slog.Logger) *WebSocket {
	if policy == nil {
		policy = retry.NewRetryPolicy(3, 500*time.Millisecond)
	}
	return &WebSocket{
		relayURL: relayURL,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		retry:  policy,
		logger: logger,
	}
}

// Connect dials the relay for matchID. An open session is torn down first.
func (w *WebSocket) Connect(ctx context.Context, matchID string) error {
	endpoint, err := w.endpoint(matchID)
	if err != nil {
		return err
	}

	w.mu.Lock()
	prev := w.sess
	w.sess = nil
	w.mu.Unlock()
	if prev != nil {
		prev.close()
	}

	var conn *websocket.Conn
	err = w.retry.Execute(ctx, func(ctx context.Context) error {
		c, resp, err := w.dialer.DialContext(ctx, endpoint, nil)
		if err != nil {
			if resp != nil && resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return retry.Permanent(fmt.Errorf("relay refused connection: status %d", resp.StatusCode))
			}
			return err
		}
		conn = c
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	s := &session{
		id:      uuid.NewString(),
		matchID: matchID,
		conn:    conn,
		send:    make(chan models.ClientMessage, sendBufferSize),
		done:    make(chan struct{}),
	}

	w.mu.Lock()
	w.sess = s
	w.mu.Unlock()

	go w.readPump(s)
	go w.writePump(s)

	w.logger.Info("connected to relay", "match_id", matchID, "session_id", s.id)
	return nil
}

// Send queues an intent for the relay
func (w *WebSocket) Send(ctx context.Context, route models.Route, payload any) error {
	w.mu.Lock()
	s := w.sess
	w.mu.Unlock()
	if s == nil {
		return ErrNotConnected
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", route, err)
	}
	msg := models.ClientMessage{
		Type:     models.MessageTypeIntent,
		MatchID:  s.matchID,
		Route:    route,
		IntentID: uuid.NewString(),
		Payload:  data,
	}

	select {
	case <-s.done:
		return ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	case s.send <- msg:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// OnUpdate registers the handler for deltas and snapshots
func (w *WebSocket) OnUpdate(handler UpdateHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onUpdate = handler
}

// OnReject registers the handler for intent rejections
func (w *WebSocket) OnReject(handler RejectHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReject = handler
}

// Disconnect closes the current session, if any
func (w *WebSocket) Disconnect() error {
	w.mu.Lock()
	s := w.sess
	w.sess = nil
	w.mu.Unlock()
	if s != nil {
		s.close()
		w.logger.Info("disconnected from relay", "match_id", s.matchID, "session_id", s.id)
	}
	return nil
}

// Connected reports whether a session is open
func (w *WebSocket) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sess != nil
}

func (w *WebSocket) endpoint(matchID string) (string, error) {
	u, err := url.Parse(w.relayURL)
	if err != nil {
		return "", fmt.Errorf("invalid relay url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	q := u.Query()
	q.Set("match_id", matchID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// readPump dispatches server frames until the connection fails or closes
func (w *WebSocket) readPump(s *session) {
	defer func() {
		s.close()
		w.mu.Lock()
		if w.sess == s {
			w.sess = nil
		}
		w.mu.Unlock()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg models.InboundServerMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			select {
			case <-s.done:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					w.logger.Warn("relay connection lost", "session_id", s.id, "error", err)
				}
			}
			return
		}
		w.dispatch(s, msg)
	}
}

func (w *WebSocket) dispatch(s *session, msg models.InboundServerMessage) {
	switch msg.Type {
	case models.MessageTypeDelta:
		var d struct {
			Patch patch.Tree           `json:"patch"`
			Error *models.ErrorMessage `json:"error"`
		}
		if err := json.Unmarshal(msg.Payload, &d); err != nil {
			w.logger.Warn("undecodable delta", "session_id", s.id, "error", err)
			return
		}
		if d.Error != nil {
			w.reject(s, *d.Error)
		}
		if len(d.Patch) > 0 {
			w.update(s, d.Patch)
		}

	case models.MessageTypeSnapshot:
		tree, err := patch.FromJSON(msg.Payload)
		if err != nil {
			w.logger.Warn("undecodable snapshot", "session_id", s.id, "error", err)
			return
		}
		w.update(s, tree)

	case models.MessageTypeError:
		var e models.ErrorMessage
		if err := json.Unmarshal(msg.Payload, &e); err != nil {
			w.logger.Warn("undecodable error frame", "session_id", s.id, "error", err)
			return
		}
		w.logger.Warn("relay reported error", "session_id", s.id, "code", e.Code, "message", e.Message)
		w.reject(s, e)

	case models.MessageTypeHeartbeat:
	default:
		w.logger.Debug("ignoring frame", "type", msg.Type)
	}
}

// update and reject deliver frames only while s is the live session; a
// replaced session's read pump may still be draining.
func (w *WebSocket) update(s *session, tree patch.Tree) {
	w.mu.Lock()
	h := w.onUpdate
	live := w.sess == s
	w.mu.Unlock()
	if !live {
		w.logger.Debug("dropping frame from replaced session", "session_id", s.id)
		return
	}
	if h != nil {
		h(tree)
	}
}

func (w *WebSocket) reject(s *session, e models.ErrorMessage) {
	w.mu.Lock()
	h := w.onReject
	live := w.sess == s
	w.mu.Unlock()
	if !live {
		w.logger.Debug("dropping rejection from replaced session", "session_id", s.id)
		return
	}
	if h != nil {
		h(e)
	}
}

// writePump drains the send queue and keeps the connection alive
func (w *WebSocket) writePump(s *session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-s.done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				w.logger.Warn("relay write failed", "session_id", s.id, "error", err)
				s.close()
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.close()
				return
			}
		}
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() { close(s.done) })
}
