package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/pkg/models"
)

// Responder answers an intent in process, returning the delta to push back
type Responder func(ctx context.Context, intent models.Intent) (patch.Tree, *models.ErrorMessage)

// Memory is an in-process Channel. Sent intents are recorded and, when a
// Responder is set, answered synchronously through the update handler.
type Memory struct {
	mu        sync.Mutex
	matchID   string
	connected bool
	sent      []models.Intent
	onUpdate  UpdateHandler
	onReject  RejectHandler
	respond   Responder
	nextID    int

	// ConnectErr, when set, is returned by Connect
	ConnectErr error
}

// NewMemory creates an in-process channel answered by respond, which may be nil
func NewMemory(respond Responder) *Memory {
	return &Memory{respond: respond}
}

// Connect marks the channel connected to matchID, or returns ConnectErr
func (m *Memory) Connect(_ context.Context, matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	m.matchID = matchID
	m.connected = true
	return nil
}

// Send records an intent and, with a Responder, delivers its answer before returning
func (m *Memory) Send(ctx context.Context, route models.Route, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", route, err)
	}

	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return ErrNotConnected
	}
	m.nextID++
	in := models.Intent{
		ID:      fmt.Sprintf("mem-%d", m.nextID),
		MatchID: m.matchID,
		Route:   route,
		Payload: data,
	}
	m.sent = append(m.sent, in)
	respond := m.respond
	m.mu.Unlock()

	if respond != nil {
		tree, rejection := respond(ctx, in)
		if rejection != nil {
			m.reject(*rejection)
		}
		if len(tree) > 0 {
			m.Push(tree)
		}
	}
	return nil
}

// OnUpdate registers the handler for pushed deltas
func (m *Memory) OnUpdate(handler UpdateHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onUpdate = handler
}

// OnReject registers the handler for refused intents
func (m *Memory) OnReject(handler RejectHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReject = handler
}

// Disconnect stops further sends. It is safe to call repeatedly.
func (m *Memory) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

// Push delivers tree to the registered handler as if the server sent it.
// Pushes are delivered whether or not the channel is connected.
func (m *Memory) Push(tree patch.Tree) {
	m.mu.Lock()
	h := m.onUpdate
	m.mu.Unlock()
	if h != nil {
		h(tree)
	}
}

func (m *Memory) reject(e models.ErrorMessage) {
	m.mu.Lock()
	h := m.onReject
	m.mu.Unlock()
	if h != nil {
		h(e)
	}
}

// Sent returns a copy of every intent sent so far
func (m *Memory) Sent() []models.Intent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Intent(nil), m.sent...)
}

// Connected reports whether Connect has been called without a later Disconnect
func (m *Memory) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}
