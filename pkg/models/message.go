package models

import (
	"encoding/json"
	"time"
)

// Message types for WebSocket communication
const (
	MessageTypeIntent    = "intent"
	MessageTypeSubscribe = "subscribe"
	MessageTypeHeartbeat = "heartbeat"
	MessageTypeDelta     = "delta"
	MessageTypeSnapshot  = "snapshot"
	MessageTypeError     = "error"
)

// Route discriminates scorer intents so the engine can dispatch them
type Route string

const (
	RouteScoreUpdate   Route = "scoreUpdate"
	RouteMatchSetup    Route = "matchsetup"
	RouteDismissal     Route = "dismissal"
	RouteSelectBatsman Route = "selectBatsman"
	RouteSelectBowler  Route = "selectBowler"
	RouteAddPlayer     Route = "addPlayer"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type     string          `json:"type"`
	MatchID  string          `json:"matchId,omitempty"`
	Route    Route           `json:"route,omitempty"`
	IntentID string          `json:"intentId,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      string      `json:"type"`
	MatchID   string      `json:"matchId,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// InboundServerMessage is ServerMessage as decoded on the client side
type InboundServerMessage struct {
	Type      string          `json:"type"`
	MatchID   string          `json:"matchId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// ConnectionStats represents connection statistics
type ConnectionStats struct {
	ClientID          string    `json:"client_id"`
	MatchID           string    `json:"match_id"`
	ConnectedAt       time.Time `json:"connected_at"`
	MessagesSent      int64     `json:"messages_sent"`
	MessagesReceived  int64     `json:"messages_received"`
	LastMessageAt     time.Time `json:"last_message_at"`
	BufferSize        int       `json:"buffer_size"`
	BufferUtilization float64   `json:"buffer_utilization"` // Percentage
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	IntentID string `json:"intentId,omitempty"`
}
