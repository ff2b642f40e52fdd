package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/playgenz/livescore/pkg/models"
)

// StreamPublisher publishes scorer intents and scorecard deltas to Redis streams
type StreamPublisher struct {
	client        *redis.Client
	intentsStream string
	deltasStream  string
}

// NewStreamPublisher creates a new stream publisher
func NewStreamPublisher(client *redis.Client, intentsStream, deltasStream string) *StreamPublisher {
	return &StreamPublisher{
		client:        client,
		intentsStream: intentsStream,
		deltasStream:  deltasStream,
	}
}

// PublishIntent publishes a scorer intent for the engine
func (p *StreamPublisher) PublishIntent(ctx context.Context, intent models.Intent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("marshaling intent: %w", err)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.intentsStream,
		Values: map[string]interface{}{
			"data":      string(data),
			"match_id":  intent.MatchID,
			"route":     string(intent.Route),
			"intent_id": intent.ID,
		},
	}).Err()
}

// PublishDelta publishes a scorecard delta for every viewer of the match
func (p *StreamPublisher) PublishDelta(ctx context.Context, delta models.Delta) error {
	data, err := json.Marshal(delta)
	if err != nil {
		return fmt.Errorf("marshaling delta: %w", err)
	}

	kind := "patch"
	if delta.Error != nil {
		kind = "error"
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.deltasStream,
		Values: map[string]interface{}{
			"data":     string(data),
			"match_id": delta.MatchID,
			"type":     kind,
		},
	}).Err()
}
