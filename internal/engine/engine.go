// Package engine owns the canonical scorecard of every match. It applies
// scorer intents with the cricket rules and produces the deltas that are
// pushed to viewers.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/playgenz/livescore/internal/cache"
	"github.com/playgenz/livescore/internal/channel"
	"github.com/playgenz/livescore/internal/cricket"
	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/pkg/cricketmath"
	"github.com/playgenz/livescore/pkg/models"
)

// Rejection codes carried on error deltas
const (
	CodeUnknownRoute     = "unknown_route"
	CodeInvalidPayload   = "invalid_payload"
	CodeMatchNotFound    = "match_not_found"
	CodeUnsupportedSport = "unsupported_sport"
	CodeRuleViolation    = "rule_violation"
	CodeInternal         = "internal"
)

// StateStore persists the canonical scorecard of each match
type StateStore interface {
	Load(ctx context.Context, matchID string) (patch.Tree, error)
	Save(ctx context.Context, matchID string, state patch.Tree) error
}

// RejectError marks an intent that was refused without touching state
type RejectError struct {
	Code string
	Err  error
}

func (e *RejectError) Error() string { return e.Err.Error() }
func (e *RejectError) Unwrap() error { return e.Err }

func reject(code string, err error) error {
	return &RejectError{Code: code, Err: err}
}

// Engine applies intents to canonical state
type Engine struct {
	states StateStore
	tracer trace.Tracer
	logger *slog.Logger
	now    func() time.Time

	// serializes read-modify-write of canonical state
	mu sync.Mutex
}

// New creates an engine over states. A nil tracer or logger is replaced with a no-op.
func New(states StateStore, tracer trace.Tracer, logger *slog.Logger) *Engine {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("engine")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		states: states,
		tracer: tracer,
		logger: logger,
		now:    time.Now,
	}
}

// Apply runs an intent against the match's canonical state, saves the result
// and returns the patch to broadcast. Refused intents return a *RejectError.
func (e *Engine) Apply(ctx context.Context, in models.Intent) (patch.Tree, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Apply", trace.WithAttributes(
		attribute.String("match_id", in.MatchID),
		attribute.String("route", string(in.Route)),
		attribute.String("intent_id", in.ID),
	))
	defer span.End()

	delta, err := e.apply(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("delta_keys", len(delta)))
	return delta, nil
}

func (e *Engine) apply(ctx context.Context, in models.Intent) (patch.Tree, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	state, err := e.states.Load(ctx, in.MatchID)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil, reject(CodeMatchNotFound, fmt.Errorf("no scorecard for match %s", in.MatchID))
		}
		return nil, fmt.Errorf("loading scorecard: %w", err)
	}

	sport := models.SportType(patch.GetString(state, "match", "sportType"))
	if sport != models.SportCricket {
		return nil, reject(CodeUnsupportedSport, fmt.Errorf("%s matches are scored locally", sport))
	}

	var sc models.CricketScore
	if err := patch.Decode(state, &sc); err != nil {
		return nil, fmt.Errorf("decoding scorecard: %w", err)
	}
	cricketmath.Derive(&sc)
	before, err := patch.FromValue(sc)
	if err != nil {
		return nil, err
	}

	if err := applyRoute(&sc, in); err != nil {
		return nil, err
	}

	cricketmath.Derive(&sc)
	after, err := patch.FromValue(sc)
	if err != nil {
		return nil, err
	}

	delta := patch.Diff(before, after)
	if len(delta) == 0 {
		return delta, nil
	}
	if err := e.states.Save(ctx, in.MatchID, patch.Apply(state, delta)); err != nil {
		return nil, fmt.Errorf("saving scorecard: %w", err)
	}

	e.logger.Debug("intent applied",
		"match_id", in.MatchID,
		"intent_id", in.ID,
		"route", in.Route,
		"delta_keys", len(delta),
	)
	return delta, nil
}

// applyRoute dispatches one intent to the cricket rules
func applyRoute(sc *models.CricketScore, in models.Intent) error {
	preToss := in.Route == models.RouteMatchSetup || in.Route == models.RouteAddPlayer
	if !preToss && sc.Match.Toss == nil {
		return reject(CodeRuleViolation, cricket.ErrMatchNotLive)
	}

	var err error
	switch in.Route {
	case models.RouteMatchSetup:
		var p models.MatchSetupIntent
		if err := decodePayload(in, &p); err != nil {
			return err
		}
		err = cricket.CommitSetup(sc, p)

	case models.RouteScoreUpdate:
		var p models.ScoreUpdateIntent
		if err := decodePayload(in, &p); err != nil {
			return err
		}
		_, err = cricket.ApplyDelivery(sc, p)

	case models.RouteDismissal:
		var p models.DismissalIntent
		if err := decodePayload(in, &p); err != nil {
			return err
		}
		err = cricket.Dismiss(sc, cricket.FromIntent(p))

	case models.RouteSelectBatsman:
		var p models.SelectBatsmanIntent
		if err := decodePayload(in, &p); err != nil {
			return err
		}
		err = cricket.SelectBatsman(sc, p.PlayerIndex, p.AsStriker)

	case models.RouteSelectBowler:
		var p models.SelectBowlerIntent
		if err := decodePayload(in, &p); err != nil {
			return err
		}
		err = cricket.SelectBowler(sc, p.BowlerIndex)

	case models.RouteAddPlayer:
		var p models.AddPlayerIntent
		if err := decodePayload(in, &p); err != nil {
			return err
		}
		err = cricket.AddPlayer(sc, p.Side, p.Player)

	default:
		return reject(CodeUnknownRoute, fmt.Errorf("unknown route %q", in.Route))
	}

	if err != nil {
		return reject(CodeRuleViolation, err)
	}
	return nil
}

func decodePayload(in models.Intent, out any) error {
	if len(in.Payload) == 0 {
		return reject(CodeInvalidPayload, fmt.Errorf("%s intent has no payload", in.Route))
	}
	if err := json.Unmarshal(in.Payload, out); err != nil {
		return reject(CodeInvalidPayload, fmt.Errorf("malformed %s payload: %w", in.Route, err))
	}
	return nil
}

// DeltaFor wraps the result of Apply into the message broadcast to viewers
func (e *Engine) DeltaFor(in models.Intent, p patch.Tree, err error) models.Delta {
	d := models.Delta{MatchID: in.MatchID, ProducedAt: e.now().UTC()}
	if err != nil {
		d.Error = ErrorMessage(in, err)
		return d
	}
	d.Patch = p
	return d
}

// ErrorMessage converts an Apply error into the wire form
func ErrorMessage(in models.Intent, err error) *models.ErrorMessage {
	var rej *RejectError
	if errors.As(err, &rej) {
		return &models.ErrorMessage{Code: rej.Code, Message: rej.Error(), IntentID: in.ID}
	}
	return &models.ErrorMessage{Code: CodeInternal, Message: "intent could not be applied", IntentID: in.ID}
}

// Responder answers in-process channel intents with this engine
func (e *Engine) Responder() channel.Responder {
	return func(ctx context.Context, in models.Intent) (patch.Tree, *models.ErrorMessage) {
		delta, err := e.Apply(ctx, in)
		if err != nil {
			e.logger.Warn("intent refused", "match_id", in.MatchID, "route", in.Route, "error", err)
			return nil, ErrorMessage(in, err)
		}
		return delta, nil
	}
}
