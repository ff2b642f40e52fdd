package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/playgenz/livescore/pkg/models"
)

// Broadcaster fans a delta out to the viewers of its match
type Broadcaster interface {
	Broadcast(delta models.Delta)
}

// ForwardDeltas feeds the deltas stream into b until ctx is cancelled
func (c *StreamConsumer) ForwardDeltas(ctx context.Context, streamKey string, b Broadcaster, logger *slog.Logger) {
	logger.Info("consuming deltas", "stream", streamKey, "group", c.groupName)

	messageCh, errorCh := c.ConsumeStream(ctx, streamKey)
	for {
		select {
		case <-ctx.Done():
			return

		case err, ok := <-errorCh:
			if !ok {
				errorCh = nil
				continue
			}
			logger.Error("stream error", "stream", streamKey, "error", err)

		case msg, ok := <-messageCh:
			if !ok {
				return
			}

			var delta models.Delta
			if err := json.Unmarshal(msg.Data, &delta); err != nil {
				logger.Warn("failed to parse delta", "message_id", msg.ID, "error", err)
			} else {
				b.Broadcast(delta)
			}

			if err := c.AckMessage(ctx, msg.StreamKey, msg.ID); err != nil {
				logger.Warn("failed to ack message", "message_id", msg.ID, "error", err)
			}
		}
	}
}
