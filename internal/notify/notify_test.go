package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderKeepsOrder(t *testing.T) {
	r := &Recorder{}
	_, ok := r.Last()
	assert.False(t, ok)

	var n Notifier = Multi{r, Nop{}}
	n.Success("score updated")
	n.Error("match is paused")
	n.Info("nothing to undo")

	assert.Equal(t, []Message{
		{Level: LevelSuccess, Text: "score updated"},
		{Level: LevelError, Text: "match is paused"},
		{Level: LevelInfo, Text: "nothing to undo"},
	}, r.Messages())
	last, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, LevelInfo, last.Level)
}

func TestWebhookSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWebhookNotifier(srv.URL, "match-1", 10, logger)
	require.NoError(t, w.Send(context.Background(), LevelError, "batter already out"))
	assert.Equal(t, "❌ *match-1* | batter already out", got["text"])
}

func TestWebhookSendStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w := NewWebhookNotifier(srv.URL, "match-1", 10, logger)
	err := w.Send(context.Background(), LevelInfo, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
