package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduplicator remembers intent ids so redelivered intents are applied once
type Deduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDeduplicator creates a new deduplicator
func NewDeduplicator(client *redis.Client, ttl time.Duration) *Deduplicator {
	return &Deduplicator{
		client: client,
		ttl:    ttl,
	}
}

// FirstSeen records intentID and reports whether it had not been seen within the TTL
func (d *Deduplicator) FirstSeen(ctx context.Context, intentID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, dedupKey(intentID), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set dedup key: %w", err)
	}
	return ok, nil
}

// Clear removes a dedup entry so a failed intent can be retried
func (d *Deduplicator) Clear(ctx context.Context, intentID string) error {
	return d.client.Del(ctx, dedupKey(intentID)).Err()
}

func dedupKey(intentID string) string {
	return fmt.Sprintf("intent:dedup:%s", intentID)
}

// Memory is an in-process deduplicator. Entries expire after ttl; a zero ttl keeps them forever.
type Memory struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	seen map[string]time.Time
}

// NewMemory creates an in-process deduplicator
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:  ttl,
		now:  time.Now,
		seen: make(map[string]time.Time),
	}
}

// FirstSeen reports whether intentID is new within the TTL, and marks it seen
func (m *Memory) FirstSeen(_ context.Context, intentID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if at, ok := m.seen[intentID]; ok && (m.ttl <= 0 || now.Sub(at) < m.ttl) {
		return false, nil
	}
	m.seen[intentID] = now
	return true, nil
}

// Clear forgets intentID
func (m *Memory) Clear(_ context.Context, intentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.seen, intentID)
	return nil
}
