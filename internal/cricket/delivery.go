package cricket

import (
	"fmt"

	"github.com/playgenz/livescore/pkg/cricketmath"
	"github.com/playgenz/livescore/pkg/models"
)

// MaxRunsPerBall bounds the runs a scorer may enter for one delivery
const MaxRunsPerBall = 7

// recentOversKept caps the over history carried on the scorecard
const recentOversKept = 6

// ApplyDelivery scores one ball.
//
// Extras follow the laws:
//   - wide: one penalty run plus any runs taken, all extras, charged to the bowler, not a ball
//   - no-ball: one extra charged to the bowler, runs off the bat to the batter, faced but not legal
//   - bye, leg-bye: extras on a legal ball, not charged to the bowler
//   - penalty: runs to the batting side, on a legal ball not charged to the bowler
//
// The strike changes on an odd number of runs taken and again at the end of
// an over, after which the bowler slot is cleared for the next selection.
func ApplyDelivery(sc *models.CricketScore, in models.ScoreUpdateIntent) (models.Delivery, error) {
	if !isLive(sc) {
		return models.Delivery{}, ErrMatchNotLive
	}
	if sc.CurrentBatsmen.Striker == nil {
		return models.Delivery{}, ErrNoStriker
	}
	if sc.CurrentBowler == nil {
		return models.Delivery{}, ErrNoBowler
	}
	if in.Runs < 0 || in.Runs > MaxRunsPerBall {
		return models.Delivery{}, ErrInvalidRuns
	}
	extra := in.ExtraType
	isExtra := in.IsExtra || extra != ""
	if isExtra && !extra.Valid() {
		return models.Delivery{}, ErrInvalidExtra
	}

	battingID := sc.Score.Batting.Team.ID
	bowlingID := sc.Score.Bowling.Team.ID
	cards := sc.BattingOrder[battingID]
	si := battingIndex(cards, sc.CurrentBatsmen.Striker.Player.ID)
	if si < 0 {
		return models.Delivery{}, fmt.Errorf("striker card: %w", ErrUnknownPlayer)
	}
	bi := ensureBowlingCard(sc, bowlingID, sc.CurrentBowler.Player)
	striker := &cards[si]
	bowler := &sc.BowlingStats[bowlingID][bi]
	bat := &sc.Score.Batting

	d := models.Delivery{Runs: in.Runs, IsExtra: isExtra, IsLegal: true}
	if isExtra {
		d.ExtraType = extra
		d.IsLegal = extra.Legal()
	}

	total := in.Runs
	batterRuns := 0
	faced := true
	switch {
	case !isExtra:
		batterRuns = in.Runs
	case extra == models.ExtraWide:
		total = 1 + in.Runs
		bat.Extras.Wide += total
		bowler.Wides++
		faced = false
	case extra == models.ExtraNoBall:
		total = 1 + in.Runs
		bat.Extras.NoBall++
		batterRuns = in.Runs
		bowler.NoBalls++
	case extra == models.ExtraBye:
		bat.Extras.Byes += in.Runs
	case extra == models.ExtraLegBye:
		bat.Extras.LegByes += in.Runs
	case extra == models.ExtraPenalty:
		bat.Extras.Penalty += in.Runs
	}
	charged := chargedRuns(d)

	bat.Runs += total
	striker.Runs += batterRuns
	if faced {
		striker.Balls++
	}
	switch batterRuns {
	case 4:
		striker.Fours++
	case 6:
		striker.Sixes++
	}
	bowler.Runs += charged
	sc.Partnership.Runs += total

	ballsBefore := cricketmath.OversToBalls(bat.Overs)
	over := currentOver(sc, ballsBefore/cricketmath.BallsPerOver+1, bowler.Player.ID)
	over.Deliveries = append(over.Deliveries, d)
	over.Runs += total

	overComplete := false
	if d.IsLegal {
		bat.Overs = cricketmath.BallsToOvers(ballsBefore + 1)
		bowler.Overs = cricketmath.AddLegalBall(bowler.Overs)
		sc.Partnership.Balls++
		if charged == 0 {
			bowler.Dots++
		}
		overComplete = (ballsBefore+1)%cricketmath.BallsPerOver == 0
	}
	if overComplete {
		conceded := 0
		for _, od := range over.Deliveries {
			conceded += chargedRuns(od)
		}
		if conceded == 0 {
			bowler.Maidens++
		}
	}

	refreshSlots(sc)
	if in.Runs%2 == 1 {
		swapStrike(sc)
	}
	if overComplete {
		swapStrike(sc)
		sc.CurrentBowler = nil
	}
	trimRecentOvers(sc)
	checkInningsEnd(sc)
	return d, nil
}

// chargedRuns is what a delivery costs the bowler
func chargedRuns(d models.Delivery) int {
	if !d.IsExtra {
		return d.Runs
	}
	switch d.ExtraType {
	case models.ExtraWide, models.ExtraNoBall:
		return 1 + d.Runs
	}
	return 0
}

// currentOver returns the over being bowled, opening it when number is new
func currentOver(sc *models.CricketScore, number int, bowlerID string) *models.Over {
	if n := len(sc.RecentOvers); n > 0 && sc.RecentOvers[n-1].Number == number {
		return &sc.RecentOvers[n-1]
	}
	sc.RecentOvers = append(sc.RecentOvers, models.Over{
		Number:     number,
		Bowler:     bowlerID,
		Deliveries: []models.Delivery{},
	})
	return &sc.RecentOvers[len(sc.RecentOvers)-1]
}

func trimRecentOvers(sc *models.CricketScore) {
	if n := len(sc.RecentOvers); n > recentOversKept {
		sc.RecentOvers = append([]models.Over(nil), sc.RecentOvers[n-recentOversKept:]...)
	}
}

func swapStrike(sc *models.CricketScore) {
	b := &sc.CurrentBatsmen
	b.Striker, b.NonStriker = b.NonStriker, b.Striker
}
