package store

import (
	"context"

	"github.com/playgenz/livescore/internal/cricket"
	"github.com/playgenz/livescore/pkg/models"
)

// Step is a stage of the cricket setup flow. Steps only move forward.
type Step int

const (
	StepSelectTossWinner Step = iota
	StepSelectTossDecision
	StepSelectOpeningBatsmen
	StepSelectOpeningBowler
	StepLive
)

func (s Step) String() string {
	switch s {
	case StepSelectTossWinner:
		return "selectTossWinner"
	case StepSelectTossDecision:
		return "selectTossDecision"
	case StepSelectOpeningBatsmen:
		return "selectOpeningBatsmen"
	case StepSelectOpeningBowler:
		return "selectOpeningBowler"
	case StepLive:
		return "live"
	}
	return "unknown"
}

// setupState is the in-progress setup selection. It lives only in memory.
type setupState struct {
	selection   cricket.SetupSelection
	bowlerReady bool
}

func (s *Store) requireStep(want Step) error {
	if !s.open {
		return ErrNotOpen
	}
	if s.sport != models.SportCricket {
		return ErrWrongSport
	}
	if s.step != want {
		return ErrWrongStep
	}
	return nil
}

// SelectTossWinner records which side won the toss
func (s *Store) SelectTossWinner(side models.Side) error {
	s.mu.Lock()
	err := s.requireStep(StepSelectTossWinner)
	if err == nil && !side.Valid() {
		err = ErrInvalidSide
	}
	if err == nil {
		s.setup.selection.TossWinner = side
		s.step = StepSelectTossDecision
	}
	s.mu.Unlock()
	if err != nil {
		return s.fail(OpCommitSetup, err)
	}
	return nil
}

// SelectTossDecision records whether the toss winner bats or bowls
func (s *Store) SelectTossDecision(decision models.TossDecision) error {
	s.mu.Lock()
	err := s.requireStep(StepSelectTossDecision)
	if err == nil && decision != models.DecisionBat && decision != models.DecisionBowl {
		err = cricket.ErrInvalidDecision
	}
	if err == nil {
		s.setup.selection.Decision = decision
		s.step = StepSelectOpeningBatsmen
	}
	s.mu.Unlock()
	if err != nil {
		return s.fail(OpCommitSetup, err)
	}
	return nil
}

// SelectOpeningBatsmen picks the openers by batting team roster index
func (s *Store) SelectOpeningBatsmen(strikerIndex, nonStrikerIndex int) error {
	s.mu.Lock()
	err := s.requireStep(StepSelectOpeningBatsmen)
	if err == nil {
		var batting *models.Team
		batting, _, err = s.setupTeams()
		switch {
		case err != nil:
		case !inRange(batting.Players, strikerIndex) || !inRange(batting.Players, nonStrikerIndex):
			err = cricket.ErrInvalidIndex
		case strikerIndex == nonStrikerIndex:
			err = cricket.ErrSamePlayer
		}
	}
	if err == nil {
		s.setup.selection.StrikerIndex = strikerIndex
		s.setup.selection.NonStrikerIndex = nonStrikerIndex
		s.step = StepSelectOpeningBowler
	}
	s.mu.Unlock()
	if err != nil {
		return s.fail(OpCommitSetup, err)
	}
	return nil
}

// SelectOpeningBowler picks the opening bowler by bowling team roster index.
// It may be called again to change the choice until the setup is committed.
func (s *Store) SelectOpeningBowler(index int) error {
	s.mu.Lock()
	err := s.requireStep(StepSelectOpeningBowler)
	if err == nil {
		var bowling *models.Team
		_, bowling, err = s.setupTeams()
		if err == nil && !inRange(bowling.Players, index) {
			err = cricket.ErrInvalidIndex
		}
	}
	if err == nil {
		s.setup.selection.BowlerIndex = index
		s.setup.bowlerReady = true
	}
	s.mu.Unlock()
	if err != nil {
		return s.fail(OpCommitSetup, err)
	}
	return nil
}

// CommitSetup writes the toss and openers locally, saves the pre-commit
// state for undo and sends the selection to the server. The match is live
// as soon as this returns; the server echo is not awaited.
func (s *Store) CommitSetup(ctx context.Context) error {
	s.mu.Lock()
	var intent models.MatchSetupIntent
	err := s.requireStep(StepSelectOpeningBowler)
	if err == nil && !s.setup.bowlerReady {
		err = ErrSetupIncomplete
	}
	if err == nil {
		sel := s.setup.selection
		err = mutate(s, OpCommitSetup, func(sc *models.CricketScore) error {
			in, err := cricket.SetupIntent(&sc.Match, sel)
			if err != nil {
				return err
			}
			intent = in
			return cricket.CommitSetup(sc, in)
		})
	}
	if err == nil {
		s.step = StepLive
		s.setup = setupState{}
	}
	s.mu.Unlock()
	if err != nil {
		return s.fail(OpCommitSetup, err)
	}

	s.logger.Info("match setup committed", "batting", intent.BattingTeam, "bowling", intent.BowlingTeam)
	s.notifier.Success("Match setup complete")
	s.forward(ctx, OpCommitSetup, intent)
	return nil
}

// Setup returns the selections made so far in the setup flow
func (s *Store) Setup() cricket.SetupSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setup.selection
}

// setupTeams resolves the batting and bowling teams from the toss selection
func (s *Store) setupTeams() (batting, bowling *models.Team, err error) {
	var m matchView
	if err := decodeMatch(s.state, &m); err != nil {
		return nil, nil, err
	}
	battingSide, bowlingSide := cricket.ResolveSides(s.setup.selection.TossWinner, s.setup.selection.Decision)
	return m.Match.TeamBySide(battingSide), m.Match.TeamBySide(bowlingSide), nil
}

func inRange[T any](s []T, i int) bool {
	return i >= 0 && i < len(s)
}
