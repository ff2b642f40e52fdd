package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/playgenz/livescore/internal/consumer"
	"github.com/playgenz/livescore/internal/metrics"
	"github.com/playgenz/livescore/pkg/models"
)

// MessageSource yields intent stream messages and takes acknowledgements
type MessageSource interface {
	ConsumeStream(ctx context.Context, streamKey string) (<-chan consumer.Message, <-chan error)
	AckMessage(ctx context.Context, streamKey, messageID string) error
}

// DeltaPublisher publishes deltas for the relay
type DeltaPublisher interface {
	PublishDelta(ctx context.Context, delta models.Delta) error
}

// Deduplicator records intent ids so redelivered intents are applied once
type Deduplicator interface {
	FirstSeen(ctx context.Context, intentID string) (bool, error)
	Clear(ctx context.Context, intentID string) error
}

// Processor consumes the intents stream and publishes the resulting deltas
type Processor struct {
	source    MessageSource
	stream    string
	engine    *Engine
	publisher DeltaPublisher
	dedup     Deduplicator
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewProcessor creates a new processor reading intents from stream
func NewProcessor(
	source MessageSource,
	stream string,
	engine *Engine,
	publisher DeltaPublisher,
	dedup Deduplicator,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Processor {
	if m == nil {
		m = metrics.New(nil)
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Processor{
		source:    source,
		stream:    stream,
		engine:    engine,
		publisher: publisher,
		dedup:     dedup,
		metrics:   m,
		logger:    logger,
	}
}

// Start processes intents until ctx is cancelled
func (p *Processor) Start(ctx context.Context) error {
	p.logger.Info("processing intents", "stream", p.stream)

	messageCh, errorCh := p.source.ConsumeStream(ctx, p.stream)
	for {
		select {
		case <-ctx.Done():
			return nil

		case err, ok := <-errorCh:
			if !ok {
				errorCh = nil
				continue
			}
			p.logger.Error("stream error", "stream", p.stream, "error", err)

		case msg, ok := <-messageCh:
			if !ok {
				return nil
			}
			p.Handle(ctx, msg)

			if err := p.source.AckMessage(ctx, msg.StreamKey, msg.ID); err != nil {
				p.logger.Error("error acknowledging message", "message_id", msg.ID, "error", err)
			}
		}
	}
}

// Handle applies one stream message and publishes its delta. The outcome is
// returned for metrics and tests.
func (p *Processor) Handle(ctx context.Context, msg consumer.Message) string {
	start := time.Now()

	var in models.Intent
	if err := json.Unmarshal(msg.Data, &in); err != nil {
		p.logger.Warn("undecodable intent", "message_id", msg.ID, "error", err)
		p.metrics.IntentsProcessed.WithLabelValues("unknown", metrics.OutcomeRejected).Inc()
		return metrics.OutcomeRejected
	}
	route := string(in.Route)
	defer func() {
		p.metrics.IntentDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}()

	outcome := p.handle(ctx, in)
	p.metrics.IntentsProcessed.WithLabelValues(route, outcome).Inc()
	return outcome
}

func (p *Processor) handle(ctx context.Context, in models.Intent) string {
	log := p.logger.With("match_id", in.MatchID, "intent_id", in.ID, "route", in.Route)

	if in.ID != "" && p.dedup != nil {
		first, err := p.dedup.FirstSeen(ctx, in.ID)
		if err != nil {
			log.Warn("dedup check failed", "error", err)
		} else if !first {
			log.Debug("duplicate intent skipped")
			return metrics.OutcomeDuplicate
		}
	}

	delta, err := p.engine.Apply(ctx, in)
	outcome := metrics.OutcomeApplied
	var rej *RejectError
	switch {
	case errors.As(err, &rej):
		log.Info("intent rejected", "code", rej.Code, "reason", rej.Err)
		outcome = metrics.OutcomeRejected
	case err != nil:
		log.Error("intent failed", "error", err)
		outcome = metrics.OutcomeFailed
		if p.dedup != nil && in.ID != "" {
			if cerr := p.dedup.Clear(ctx, in.ID); cerr != nil {
				log.Warn("failed to clear dedup key", "error", cerr)
			}
		}
	case len(delta) == 0:
		return outcome
	}

	if perr := p.publish(ctx, p.engine.DeltaFor(in, delta, err)); perr != nil {
		log.Error("publish error", "error", perr)
		return metrics.OutcomeFailed
	}
	return outcome
}

func (p *Processor) publish(ctx context.Context, d models.Delta) error {
	if err := p.publisher.PublishDelta(ctx, d); err != nil {
		return fmt.Errorf("publishing delta: %w", err)
	}
	p.metrics.DeltasPublished.Inc()
	return nil
}
