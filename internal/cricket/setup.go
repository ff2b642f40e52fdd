package cricket

import (
	"fmt"

	"github.com/playgenz/livescore/pkg/cricketmath"
	"github.com/playgenz/livescore/pkg/models"
)

// SetupSelection is the scorer's toss and opener choice, by roster index
type SetupSelection struct {
	TossWinner      models.Side
	Decision        models.TossDecision
	StrikerIndex    int // batting team roster
	NonStrikerIndex int // batting team roster
	BowlerIndex     int // bowling team roster
}

// ResolveSides maps a toss result onto the batting and bowling sides
// winner home, decision bat  → home bats
// winner home, decision bowl → away bats
func ResolveSides(winner models.Side, decision models.TossDecision) (batting, bowling models.Side) {
	if decision == models.DecisionBat {
		return winner, winner.Other()
	}
	return winner.Other(), winner
}

// SetupIntent resolves an index based selection into the id based intent
// carried on the wire.
func SetupIntent(match *models.Match, sel SetupSelection) (models.MatchSetupIntent, error) {
	if !sel.TossWinner.Valid() {
		return models.MatchSetupIntent{}, ErrUnknownTeam
	}
	if sel.Decision != models.DecisionBat && sel.Decision != models.DecisionBowl {
		return models.MatchSetupIntent{}, ErrInvalidDecision
	}
	battingSide, bowlingSide := ResolveSides(sel.TossWinner, sel.Decision)
	batting := match.TeamBySide(battingSide)
	bowling := match.TeamBySide(bowlingSide)

	if !inRange(batting.Players, sel.StrikerIndex) || !inRange(batting.Players, sel.NonStrikerIndex) ||
		!inRange(bowling.Players, sel.BowlerIndex) {
		return models.MatchSetupIntent{}, ErrInvalidIndex
	}
	if sel.StrikerIndex == sel.NonStrikerIndex {
		return models.MatchSetupIntent{}, ErrSamePlayer
	}

	return models.MatchSetupIntent{
		BattingTeam: batting.ID,
		BowlingTeam: bowling.ID,
		Toss: models.TossIntent{
			Winner:   match.TeamBySide(sel.TossWinner).ID,
			Decision: sel.Decision,
		},
		PlayerSettings: models.PlayerSettings{
			SelectedStriker:    batting.Players[sel.StrikerIndex].ID,
			SelectedNonStriker: batting.Players[sel.NonStrikerIndex].ID,
			SelectedBowler:     bowling.Players[sel.BowlerIndex].ID,
		},
	}, nil
}

// CommitSetup records the toss, seeds the scorecards and puts the openers in.
// The toss is one-shot: a second call fails with ErrTossAlreadySet.
func CommitSetup(sc *models.CricketScore, in models.MatchSetupIntent) error {
	if sc.Match.Toss != nil {
		return ErrTossAlreadySet
	}
	winnerSide, ok := sc.Match.SideOf(in.Toss.Winner)
	if !ok {
		return fmt.Errorf("toss winner %q: %w", in.Toss.Winner, ErrUnknownTeam)
	}
	if in.Toss.Decision != models.DecisionBat && in.Toss.Decision != models.DecisionBowl {
		return ErrInvalidDecision
	}
	battingSide, bowlingSide := ResolveSides(winnerSide, in.Toss.Decision)
	batting := *sc.Match.TeamBySide(battingSide)
	bowling := *sc.Match.TeamBySide(bowlingSide)
	if (in.BattingTeam != "" && in.BattingTeam != batting.ID) ||
		(in.BowlingTeam != "" && in.BowlingTeam != bowling.ID) {
		return ErrSetupMismatch
	}

	ps := in.PlayerSettings
	striker, ok := findPlayer(batting.Players, ps.SelectedStriker)
	if !ok {
		return fmt.Errorf("striker %q: %w", ps.SelectedStriker, ErrUnknownPlayer)
	}
	nonStriker, ok := findPlayer(batting.Players, ps.SelectedNonStriker)
	if !ok {
		return fmt.Errorf("non-striker %q: %w", ps.SelectedNonStriker, ErrUnknownPlayer)
	}
	if striker.ID == nonStriker.ID {
		return ErrSamePlayer
	}
	bowler, ok := findPlayer(bowling.Players, ps.SelectedBowler)
	if !ok {
		return fmt.Errorf("bowler %q: %w", ps.SelectedBowler, ErrUnknownPlayer)
	}

	sc.Match.Toss = &models.Toss{Winner: *sc.Match.TeamBySide(winnerSide), Decision: in.Toss.Decision}
	sc.Match.Status = models.StatusLive
	if sc.CurrentInnings == 0 {
		sc.CurrentInnings = 1
	}
	if sc.TotalInnings == 0 {
		_, sc.TotalInnings = cricketmath.FormatLimits(sc.Format)
	}
	sc.Score.Batting.Team = batting
	sc.Score.Bowling.Team = bowling

	ensureCards(sc, batting.ID)
	ensureCards(sc, bowling.ID)

	cards := sc.BattingOrder[batting.ID]
	s := cards[battingIndex(cards, striker.ID)]
	n := cards[battingIndex(cards, nonStriker.ID)]
	sc.CurrentBatsmen.Striker = &s
	sc.CurrentBatsmen.NonStriker = &n

	bi := ensureBowlingCard(sc, bowling.ID, bowler)
	b := sc.BowlingStats[bowling.ID][bi]
	sc.CurrentBowler = &b

	refreshSlots(sc)
	return nil
}

func inRange[T any](s []T, i int) bool {
	return i >= 0 && i < len(s)
}
