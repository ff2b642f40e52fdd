package cricket

import (
	"github.com/playgenz/livescore/pkg/cricketmath"
	"github.com/playgenz/livescore/pkg/models"
)

// DismissalInput describes a wicket. BatterIndex is into the batting team's
// batting order; BowlerIndex and FielderIndex are into the bowling team
// roster and may be models.NoPlayer.
type DismissalInput struct {
	BatterIndex  int
	Type         models.DismissalType
	BowlerIndex  int
	FielderIndex int
}

// FromIntent converts the wire form of a dismissal
func FromIntent(in models.DismissalIntent) DismissalInput {
	return DismissalInput{
		BatterIndex:  in.BatterIndex,
		Type:         in.DismissalType,
		BowlerIndex:  in.BowlerIndex,
		FielderIndex: in.FielderIndex,
	}
}

// Dismiss records a wicket: the batter's card gets its dismissal, the
// wicket count is recounted from the cards, the batter leaves their slot,
// the partnership resets and the bowler is credited where the laws say so.
func Dismiss(sc *models.CricketScore, in DismissalInput) error {
	battingID := sc.Score.Batting.Team.ID
	bowlingID := sc.Score.Bowling.Team.ID
	cards := sc.BattingOrder[battingID]
	if !inRange(cards, in.BatterIndex) {
		return ErrInvalidIndex
	}
	if cards[in.BatterIndex].Out() {
		return ErrAlreadyDismissed
	}
	if !in.Type.Valid() {
		return ErrInvalidDismissal
	}

	fielders := roster(sc, bowlingID)
	var bowler, fielder *models.Player
	if in.BowlerIndex != models.NoPlayer {
		if !inRange(fielders, in.BowlerIndex) {
			return ErrInvalidIndex
		}
		bowler = &fielders[in.BowlerIndex]
	} else if sc.CurrentBowler != nil && in.Type.CreditsBowler() {
		p := sc.CurrentBowler.Player
		bowler = &p
	}
	if in.FielderIndex != models.NoPlayer {
		if !inRange(fielders, in.FielderIndex) {
			return ErrInvalidIndex
		}
		fielder = &fielders[in.FielderIndex]
	}

	d := &models.Dismissal{Type: in.Type}
	if bowler != nil {
		d.Bowler = bowler.Name
	}
	if fielder != nil {
		d.Fielder = fielder.Name
	}
	d.Description = cricketmath.DismissalDescription(in.Type, d.Bowler, d.Fielder)

	card := &cards[in.BatterIndex]
	card.Dismissal = d
	sc.Score.Batting.Wickets = countWickets(cards)

	if s := sc.CurrentBatsmen.Striker; s != nil && s.Player.ID == card.Player.ID {
		sc.CurrentBatsmen.Striker = nil
	}
	if n := sc.CurrentBatsmen.NonStriker; n != nil && n.Player.ID == card.Player.ID {
		sc.CurrentBatsmen.NonStriker = nil
	}
	sc.Partnership = models.Partnership{}
	sc.LastWicket = cricketmath.LastWicketSummary(*card)

	if bowler != nil && in.Type.CreditsBowler() {
		bowling := sc.BowlingStats[bowlingID]
		if i := bowlingIndex(bowling, bowler.ID); i >= 0 {
			bowling[i].Wickets++
		}
	}
	if n := len(sc.RecentOvers); n > 0 {
		over := &sc.RecentOvers[n-1]
		over.Wickets++
		if m := len(over.Deliveries); m > 0 {
			over.Deliveries[m-1].IsWicket = true
		}
	}

	refreshSlots(sc)
	checkInningsEnd(sc)
	return nil
}
