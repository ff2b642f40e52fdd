package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const busyGroup = "BUSYGROUP Consumer Group name already exists"

// Message represents a consumed stream message
type Message struct {
	ID        string
	StreamKey string
	Data      []byte
	Values    map[string]interface{}
}

// StreamConsumer reads messages from a Redis stream through a consumer group
type StreamConsumer struct {
	redis      *redis.Client
	consumerID string
	groupName  string
	startID    string
	batchSize  int64
	blockTime  time.Duration
}

// Option configures a StreamConsumer
type Option func(*StreamConsumer)

// WithBatchSize sets how many messages one read may return
func WithBatchSize(n int64) Option {
	return func(c *StreamConsumer) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithBlockTime sets how long a read waits for new messages
func WithBlockTime(d time.Duration) Option {
	return func(c *StreamConsumer) {
		if d > 0 {
			c.blockTime = d
		}
	}
}

// FromLatest makes a newly created group skip the stream's backlog
func FromLatest() Option {
	return func(c *StreamConsumer) { c.startID = "$" }
}

// NewStreamConsumer creates a new stream consumer
func NewStreamConsumer(redisClient *redis.Client, consumerID, groupName string, opts ...Option) *StreamConsumer {
	c := &StreamConsumer{
		redis:      redisClient,
		consumerID: consumerID,
		groupName:  groupName,
		startID:    "0",
		batchSize:  100,
		blockTime:  time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ConsumeStream reads messages from a Redis stream until ctx is cancelled.
// Messages without a "data" field are acknowledged and skipped.
func (c *StreamConsumer) ConsumeStream(ctx context.Context, streamKey string) (<-chan Message, <-chan error) {
	messageCh := make(chan Message, c.batchSize)
	errorCh := make(chan error, 1)

	go func() {
		defer close(messageCh)
		defer close(errorCh)

		// Create consumer group if it doesn't exist
		if err := c.createConsumerGroup(ctx, streamKey); err != nil {
			errorCh <- fmt.Errorf("failed to create consumer group: %w", err)
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			messages, err := c.readMessages(ctx, streamKey)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				select {
				case errorCh <- fmt.Errorf("error reading messages: %w", err):
				default:
				}
				time.Sleep(time.Second)
				continue
			}

			for _, msg := range messages {
				select {
				case messageCh <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return messageCh, errorCh
}

// readMessages reads a batch of messages from the stream
func (c *StreamConsumer) readMessages(ctx context.Context, streamKey string) ([]Message, error) {
	streams, err := c.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.groupName,
		Consumer: c.consumerID,
		Streams:  []string{streamKey, ">"},
		Count:    c.batchSize,
		Block:    c.blockTime,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			// No new messages, not an error
			return nil, nil
		}
		return nil, err
	}

	var messages []Message
	for _, stream := range streams {
		for _, xmsg := range stream.Messages {
			data, ok := xmsg.Values["data"].(string)
			if !ok {
				// ACK the message anyway to prevent reprocessing
				c.AckMessage(ctx, stream.Stream, xmsg.ID)
				continue
			}
			messages = append(messages, Message{
				ID:        xmsg.ID,
				StreamKey: stream.Stream,
				Data:      []byte(data),
				Values:    xmsg.Values,
			})
		}
	}
	return messages, nil
}

// AckMessage acknowledges a message has been processed
func (c *StreamConsumer) AckMessage(ctx context.Context, streamKey, messageID string) error {
	return c.redis.XAck(ctx, streamKey, c.groupName, messageID).Err()
}

// createConsumerGroup creates the consumer group if it doesn't exist
func (c *StreamConsumer) createConsumerGroup(ctx context.Context, streamKey string) error {
	err := c.redis.XGroupCreateMkStream(ctx, streamKey, c.groupName, c.startID).Err()
	if err != nil && err.Error() != busyGroup {
		return err
	}
	return nil
}
