// Package store holds the live scorecard of one match. It applies scorer
// operations, sends intents over the channel and merges the canonical
// deltas the server pushes back.
package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/playgenz/livescore/internal/channel"
	"github.com/playgenz/livescore/internal/history"
	"github.com/playgenz/livescore/internal/notify"
	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/internal/snapshot"
	"github.com/playgenz/livescore/pkg/cricketmath"
	"github.com/playgenz/livescore/pkg/models"
)

// Deps are the collaborators of a Store
type Deps struct {
	Channel    channel.Channel
	Fetcher    snapshot.Fetcher
	Notifier   notify.Notifier
	Logger     *slog.Logger
	HistoryCap int
}

// Store is the scorecard of a single match
type Store struct {
	matchID  string
	ch       channel.Channel
	fetcher  snapshot.Fetcher
	notifier notify.Notifier
	logger   *slog.Logger
	history  *history.Stack

	mu     sync.Mutex
	state  patch.Tree
	sport  models.SportType
	step   Step
	setup  setupState
	paused bool
	open   bool
	// epoch invalidates channel callbacks registered by an earlier Open
	epoch uint64
}

// New creates a store for matchID. Open must be called before use.
func New(matchID string, deps Deps) *Store {
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		matchID:  matchID,
		ch:       deps.Channel,
		fetcher:  deps.Fetcher,
		notifier: deps.Notifier,
		logger:   deps.Logger.With("match_id", matchID),
		history:  history.New(deps.HistoryCap),
		state:    patch.Tree{},
	}
}

// Open loads the initial scorecard and connects the channel. A failed fetch
// is returned; a failed connect is reported and leaves the store usable
// without live updates.
func (s *Store) Open(ctx context.Context) error {
	tree, err := s.fetcher.Fetch(ctx, s.matchID)
	if err != nil {
		s.notifier.Error("Could not load scorecard")
		return fmt.Errorf("failed to fetch scorecard for %s: %w", s.matchID, err)
	}

	s.mu.Lock()
	s.state = tree
	s.sport = sportOf(tree)
	s.step = initialStep(tree, s.sport)
	s.setup = setupState{}
	s.paused = false
	s.history.Reset()
	s.epoch++
	epoch := s.epoch
	s.open = true
	s.mu.Unlock()

	if s.ch == nil {
		return nil
	}
	s.ch.OnUpdate(func(update patch.Tree) { s.applyPush(epoch, update) })
	if r, ok := s.ch.(channel.Rejecter); ok {
		r.OnReject(func(msg models.ErrorMessage) { s.applyReject(epoch, msg) })
	}
	if err := s.ch.Connect(ctx, s.matchID); err != nil {
		s.logger.Warn("channel connect failed", "error", err)
		s.notifier.Error("Live updates unavailable")
	}
	s.logger.Info("scorecard opened", "sport", s.sport, "step", s.step)
	return nil
}

// Close disconnects the channel. Pushes that arrive afterwards are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return
	}
	s.open = false
	s.epoch++
	s.mu.Unlock()

	if s.ch == nil {
		return
	}
	if err := s.ch.Disconnect(); err != nil {
		s.logger.Warn("channel disconnect failed", "error", err)
	}
	s.logger.Info("scorecard closed")
}

// applyPush merges a canonical delta into the local state, last writer wins
// per leaf. Leaves of the wrong type are dropped; the rest of the delta stands.
func (s *Store) applyPush(epoch uint64, update patch.Tree) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || !s.open {
		s.logger.Debug("dropping update for closed store")
		return
	}

	next, dropped := mergeTolerant(s.state, update, s.sport)
	if len(dropped) > 0 {
		s.logger.Warn("dropped malformed update fields", "paths", dropped)
		s.notifier.Error("Received a malformed scorecard update")
	}
	s.state = next
	if s.step != StepLive && initialStep(next, s.sport) == StepLive {
		s.step = StepLive
	}
}

func (s *Store) applyReject(epoch uint64, msg models.ErrorMessage) {
	s.mu.Lock()
	stale := epoch != s.epoch || !s.open
	s.mu.Unlock()
	if stale {
		return
	}
	s.logger.Warn("intent rejected", "intent_id", msg.IntentID, "code", msg.Code, "message", msg.Message)
	s.notifier.Error(msg.Message)
}

// forward sends an intent after the lock is released. Send failures are
// reported, never returned, because the local change already stands.
func (s *Store) forward(ctx context.Context, op Operation, payload any) {
	p := policies[op]
	if s.ch == nil || p.Route == "" {
		return
	}
	if err := s.ch.Send(ctx, p.Route, payload); err != nil {
		s.logger.Warn("intent not sent", "op", op, "route", p.Route, "error", err)
		s.notifier.Error("Change saved locally but not synced")
	}
}

// fail reports err to the user and returns it
func (s *Store) fail(op Operation, err error) error {
	s.logger.Debug("operation rejected", "op", op, "error", err)
	s.notifier.Error(message(err))
	return err
}

// mutate applies fn to the typed view of the state and merges only the
// fields fn changed, so unknown leaves in the tree survive. Callers hold mu.
func mutate[T any](s *Store, op Operation, fn func(*T) error) error {
	var v T
	if err := patch.Decode(s.state, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	before, err := patch.FromValue(&v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if err := fn(&v); err != nil {
		return err
	}
	after, err := patch.FromValue(&v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if policies[op].Snapshot {
		s.history.Push(s.state)
	}
	s.state = patch.Apply(s.state, patch.Diff(before, after))
	return nil
}

// Scorecard returns the typed cricket scorecard with derived stats recomputed
func (s *Store) Scorecard() (*models.CricketScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sport != models.SportCricket {
		return nil, ErrWrongSport
	}
	var sc models.CricketScore
	if err := patch.Decode(s.state, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	cricketmath.Derive(&sc)
	return &sc, nil
}

// UniversalScore returns the typed scoreboard of a non-cricket match
func (s *Store) UniversalScore() (*models.UniversalScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sport == models.SportCricket {
		return nil, ErrWrongSport
	}
	var us models.UniversalScore
	if err := patch.Decode(s.state, &us); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return &us, nil
}

// State returns a copy of the raw scorecard tree
func (s *Store) State() patch.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return patch.Clone(s.state)
}

// MatchID returns the id of the match this store holds
func (s *Store) MatchID() string { return s.matchID }

// Sport returns the sport read from the loaded scorecard
func (s *Store) Sport() models.SportType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sport
}

// Step returns the current setup step, StepLive once the toss is committed
func (s *Store) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Paused reports whether scoring is paused
func (s *Store) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// CanUndo reports whether UndoLastAction has a snapshot to restore
func (s *Store) CanUndo() bool {
	return s.history.Len() > 0
}

func sportOf(t patch.Tree) models.SportType {
	if sport := patch.GetString(t, "match", "sportType"); sport != "" {
		return models.SportType(sport)
	}
	return models.SportCricket
}

func initialStep(t patch.Tree, sport models.SportType) Step {
	if sport != models.SportCricket {
		return StepLive
	}
	if toss, ok := patch.Get(t, "match", "toss"); ok && toss != nil {
		return StepLive
	}
	return StepSelectTossWinner
}

// validate checks that t still decodes into the sport's typed model
func validate(t patch.Tree, sport models.SportType) error {
	if sport == models.SportCricket {
		return patch.Decode(t, &models.CricketScore{})
	}
	return patch.Decode(t, &models.UniversalScore{})
}

// message turns an operation error into toast text
func message(err error) string {
	msg := err.Error()
	if msg == "" {
		return "Something went wrong"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
