// Package cache holds the canonical scorecard of every match.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/pkg/models"
)

// TTL constants
const (
	UpcomingTTL = 24 * time.Hour
	LiveTTL     = 2 * time.Hour
	FinalTTL    = 6 * time.Hour
)

const indexKey = "scorecards:index"

// ErrNotFound is returned when no scorecard is cached for a match
var ErrNotFound = errors.New("scorecard not cached")

// RedisCache stores scorecards as JSON documents in Redis
type RedisCache struct {
	client   *redis.Client
	liveTTL  time.Duration
	finalTTL time.Duration
}

// NewRedisCache creates a Redis-backed cache. Zero TTLs fall back to LiveTTL and FinalTTL.
func NewRedisCache(client *redis.Client, liveTTL, finalTTL time.Duration) *RedisCache {
	if liveTTL <= 0 {
		liveTTL = LiveTTL
	}
	if finalTTL <= 0 {
		finalTTL = FinalTTL
	}
	return &RedisCache{
		client:   client,
		liveTTL:  liveTTL,
		finalTTL: finalTTL,
	}
}

// Save writes the full scorecard of a match
func (c *RedisCache) Save(ctx context.Context, matchID string, state patch.Tree) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshaling scorecard: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, scorecardKey(matchID), data, c.ttlFor(state))
	pipe.SAdd(ctx, indexKey, matchID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("writing scorecard %s: %w", matchID, err)
	}
	return nil
}

// Load reads the full scorecard of a match
func (c *RedisCache) Load(ctx context.Context, matchID string) (patch.Tree, error) {
	data, err := c.client.Get(ctx, scorecardKey(matchID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading scorecard %s: %w", matchID, err)
	}
	return patch.FromJSON(data)
}

// List returns the ids of every match with a cached scorecard.
// Expired scorecards are pruned from the index as they are found.
func (c *RedisCache) List(ctx context.Context) ([]string, error) {
	ids, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("reading scorecard index: %w", err)
	}

	live := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := c.client.Exists(ctx, scorecardKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("checking scorecard %s: %w", id, err)
		}
		if n == 0 {
			c.client.SRem(ctx, indexKey, id)
			continue
		}
		live = append(live, id)
	}
	return live, nil
}

// ttlFor returns appropriate TTL based on match status
func (c *RedisCache) ttlFor(state patch.Tree) time.Duration {
	switch models.MatchStatus(patch.GetString(state, "match", "status")) {
	case models.StatusLive:
		return c.liveTTL
	case models.StatusCompleted:
		return c.finalTTL
	default:
		return UpcomingTTL
	}
}

func scorecardKey(matchID string) string {
	return fmt.Sprintf("scorecard:%s", matchID)
}
