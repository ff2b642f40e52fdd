package store

import (
	"context"
	"fmt"

	"github.com/playgenz/livescore/internal/channel"
	"github.com/playgenz/livescore/internal/cricket"
	"github.com/playgenz/livescore/pkg/models"
)

// checkLive guards runtime cricket operations. Callers hold mu.
func (s *Store) checkLive() error {
	if !s.open {
		return ErrNotOpen
	}
	if s.sport != models.SportCricket {
		return ErrWrongSport
	}
	if s.step != StepLive {
		return cricket.ErrMatchNotLive
	}
	return nil
}

// UpdateScore sends a ball to the server. Nothing changes locally; the
// canonical totals arrive with the next pushed delta.
func (s *Store) UpdateScore(ctx context.Context, runs int, isExtra bool, extraType models.ExtraType) error {
	return s.sendDelivery(ctx, OpUpdateScore, models.ScoreUpdateIntent{Runs: runs, IsExtra: isExtra, ExtraType: extraType})
}

// AddExtras sends an extra of the given type to the server
func (s *Store) AddExtras(ctx context.Context, extraType models.ExtraType, runs int) error {
	return s.sendDelivery(ctx, OpAddExtras, models.ScoreUpdateIntent{Runs: runs, IsExtra: true, ExtraType: extraType})
}

func (s *Store) sendDelivery(ctx context.Context, op Operation, in models.ScoreUpdateIntent) error {
	s.mu.Lock()
	err := s.checkScoring()
	s.mu.Unlock()
	if err == nil {
		err = validDelivery(in)
	}
	if err != nil {
		return s.fail(op, err)
	}
	if s.ch == nil {
		return s.fail(op, fmt.Errorf("sending score update: %w", channel.ErrNotConnected))
	}

	if err := s.ch.Send(ctx, policies[op].Route, in); err != nil {
		s.logger.Warn("score update not sent", "op", op, "error", err)
		s.notifier.Error("Score update not sent")
		return fmt.Errorf("sending score update: %w", err)
	}
	s.notifier.Success("Score update sent")
	return nil
}

// checkScoring adds the pause guard to checkLive. Callers hold mu.
func (s *Store) checkScoring() error {
	if s.open && s.paused {
		return ErrMatchPaused
	}
	return s.checkLive()
}

func validDelivery(in models.ScoreUpdateIntent) error {
	if in.Runs < 0 || in.Runs > cricket.MaxRunsPerBall {
		return cricket.ErrInvalidRuns
	}
	if (in.IsExtra || in.ExtraType != "") && !in.ExtraType.Valid() {
		return cricket.ErrInvalidExtra
	}
	return nil
}

// DismissBatsman records a wicket locally and mirrors it to the server.
// batterIndex is into the batting team's batting order; bowlerIndex and
// fielderIndex are into the bowling team roster, or models.NoPlayer.
func (s *Store) DismissBatsman(ctx context.Context, batterIndex int, kind models.DismissalType, bowlerIndex, fielderIndex int) error {
	intent := models.DismissalIntent{
		BatterIndex:   batterIndex,
		DismissalType: kind,
		BowlerIndex:   bowlerIndex,
		FielderIndex:  fielderIndex,
	}
	var summary string
	err := s.transition(OpDismissBatsman, func(sc *models.CricketScore) error {
		if err := cricket.Dismiss(sc, cricket.FromIntent(intent)); err != nil {
			return err
		}
		summary = sc.LastWicket
		return nil
	})
	if err != nil {
		return s.fail(OpDismissBatsman, err)
	}
	s.notifier.Success("Wicket: " + summary)
	s.forward(ctx, OpDismissBatsman, intent)
	return nil
}

// SelectBatsman puts a batter from the batting order into a slot
func (s *Store) SelectBatsman(ctx context.Context, playerIndex int, asStriker bool) error {
	var name string
	err := s.transition(OpSelectBatsman, func(sc *models.CricketScore) error {
		if err := cricket.SelectBatsman(sc, playerIndex, asStriker); err != nil {
			return err
		}
		name = sc.BattingOrder[sc.Score.Batting.Team.ID][playerIndex].Player.Name
		return nil
	})
	if err != nil {
		return s.fail(OpSelectBatsman, err)
	}
	s.notifier.Success(name + " is in")
	s.forward(ctx, OpSelectBatsman, models.SelectBatsmanIntent{PlayerIndex: playerIndex, AsStriker: asStriker})
	return nil
}

// SelectBowler makes a bowling team player the current bowler
func (s *Store) SelectBowler(ctx context.Context, bowlerIndex int) error {
	var name string
	err := s.transition(OpSelectBowler, func(sc *models.CricketScore) error {
		if err := cricket.SelectBowler(sc, bowlerIndex); err != nil {
			return err
		}
		name = sc.CurrentBowler.Player.Name
		return nil
	})
	if err != nil {
		return s.fail(OpSelectBowler, err)
	}
	s.notifier.Success(name + " to bowl")
	s.forward(ctx, OpSelectBowler, models.SelectBowlerIntent{BowlerIndex: bowlerIndex})
	return nil
}

// transition runs a local cricket mutation under the lock
func (s *Store) transition(op Operation, fn func(*models.CricketScore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkLive(); err != nil {
		return err
	}
	return mutate(s, op, fn)
}

// PauseMatch sets the local pause flag. Scoring is refused while paused.
func (s *Store) PauseMatch(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
	if paused {
		s.notifier.Info("Match paused")
	} else {
		s.notifier.Info("Match resumed")
	}
}

// UndoLastAction restores the scorecard saved before the most recent local
// transition. It reports false when there is nothing to undo. The restore
// is local only; the server keeps its canonical state.
func (s *Store) UndoLastAction() bool {
	prev, ok := s.history.Pop()
	if !ok {
		s.notifier.Info("Nothing to undo")
		return false
	}
	s.mu.Lock()
	s.state = prev
	if initialStep(prev, s.sport) != StepLive {
		s.step = StepSelectTossWinner
		s.setup = setupState{}
	}
	s.mu.Unlock()
	s.notifier.Success("Last action undone")
	return true
}
