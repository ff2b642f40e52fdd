package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// WebhookNotifier posts notifications to a chat webhook as {"text": ...}
type WebhookNotifier struct {
	webhookURL string
	matchID    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewWebhookNotifier creates a webhook notifier sending at most perMinute messages a minute
func NewWebhookNotifier(webhookURL, matchID string, perMinute int, logger *slog.Logger) *WebhookNotifier {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &WebhookNotifier{
		webhookURL: webhookURL,
		matchID:    matchID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		logger:  logger,
	}
}

func (w *WebhookNotifier) Success(msg string) { w.post(LevelSuccess, msg) }
func (w *WebhookNotifier) Error(msg string)   { w.post(LevelError, msg) }
func (w *WebhookNotifier) Info(msg string)    { w.post(LevelInfo, msg) }

func (w *WebhookNotifier) post(level Level, msg string) {
	if !w.limiter.Allow() {
		w.logger.Warn("webhook notification dropped by rate limit", "level", level)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := w.Send(ctx, level, msg); err != nil {
			w.logger.Warn("webhook notification failed", "error", err)
		}
	}()
}

// Send posts one notification and waits for the webhook to answer
func (w *WebhookNotifier) Send(ctx context.Context, level Level, msg string) error {
	payload := map[string]interface{}{
		"text": w.formatMessage(level, msg),
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.webhookURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func (w *WebhookNotifier) formatMessage(level Level, msg string) string {
	return fmt.Sprintf("%s *%s* | %s", emojiFor(level), w.matchID, msg)
}

// emojiFor returns an emoji for the notification level
func emojiFor(level Level) string {
	switch level {
	case LevelSuccess:
		return "✅"
	case LevelError:
		return "❌"
	default:
		return "ℹ️"
	}
}
