// Package notify delivers the short user-facing messages produced by scoring
// operations. Delivery is fire-and-forget.
package notify

import (
	"log/slog"
	"sync"
)

// Level is the severity of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notifier receives toasts from the scorecard store
type Notifier interface {
	Success(msg string)
	Error(msg string)
	Info(msg string)
}

// Message is a recorded notification
type Message struct {
	Level Level
	Text  string
}

// LogNotifier writes notifications to a structured logger
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier backed by logger
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(msg string) { n.logger.Info(msg, "toast", LevelSuccess) }
func (n *LogNotifier) Error(msg string)   { n.logger.Error(msg, "toast", LevelError) }
func (n *LogNotifier) Info(msg string)    { n.logger.Info(msg, "toast", LevelInfo) }

// Recorder keeps every notification in order
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }
func (r *Recorder) Info(msg string)    { r.add(LevelInfo, msg) }

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Level: level, Text: msg})
}

// Messages returns a copy of what has been recorded
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Last returns the most recent notification
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// Nop discards notifications
type Nop struct{}

func (Nop) Success(string) {}
func (Nop) Error(string)   {}
func (Nop) Info(string)    {}

// Multi fans a notification out to several notifiers
type Multi []Notifier

func (m Multi) Success(msg string) {
	for _, n := range m {
		n.Success(msg)
	}
}

func (m Multi) Error(msg string) {
	for _, n := range m {
		n.Error(msg)
	}
}

func (m Multi) Info(msg string) {
	for _, n := range m {
		n.Info(msg)
	}
}
