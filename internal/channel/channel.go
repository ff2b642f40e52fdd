// Package channel carries scorer intents to the relay and canonical deltas
// back to the scorecard store.
package channel

import (
	"context"
	"errors"

	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/pkg/models"
)

var (
	// ErrNotConnected is returned by Send when no session is open. The intent is dropped.
	ErrNotConnected = errors.New("channel is not connected")
	// ErrSendBufferFull is returned by Send when the outbound queue is saturated
	ErrSendBufferFull = errors.New("channel send buffer is full")
)

// UpdateHandler receives partial scorecard trees pushed by the server
type UpdateHandler func(update patch.Tree)

// RejectHandler receives server rejections of previously sent intents
type RejectHandler func(msg models.ErrorMessage)

// Channel is the scorer's bidirectional link to the canonical match state
type Channel interface {
	// Connect opens a session scoped to matchID, replacing any open session
	Connect(ctx context.Context, matchID string) error
	// Send transmits an intent; the outcome arrives later as an update
	Send(ctx context.Context, route models.Route, payload any) error
	// OnUpdate registers the handler for pushed updates, replacing any previous one
	OnUpdate(handler UpdateHandler)
	// Disconnect closes the session. Calling it again is a no-op.
	Disconnect() error
}

// Rejecter is implemented by channels that surface server-side rejections
type Rejecter interface {
	OnReject(handler RejectHandler)
}
