package cricket

import (
	"fmt"

	"github.com/playgenz/livescore/pkg/cricketmath"
	"github.com/playgenz/livescore/pkg/models"
)

// checkInningsEnd closes the innings when the batting side is all out, has
// used its overs or has reached its target, and closes the match after the
// last innings.
func checkInningsEnd(sc *models.CricketScore) {
	if !isLive(sc) {
		return
	}
	bat := sc.Score.Batting
	maxOvers, _ := cricketmath.FormatLimits(sc.Format)
	oversDone := maxOvers > 0 && cricketmath.OversToBalls(bat.Overs) >= maxOvers*cricketmath.BallsPerOver
	allOut := bat.Wickets >= wicketLimit(sc)
	chased := sc.Target != nil && bat.Runs >= *sc.Target
	if !oversDone && !allOut && !chased {
		return
	}

	sc.CompletedInnings = append(sc.CompletedInnings, models.InningsSummary{
		Number:  sc.CurrentInnings,
		TeamID:  bat.Team.ID,
		Runs:    bat.Runs,
		Wickets: bat.Wickets,
		Overs:   bat.Overs,
	})
	if chased || sc.CurrentInnings >= sc.TotalInnings {
		completeMatch(sc, chased)
		return
	}
	nextInnings(sc)
}

func nextInnings(sc *models.CricketScore) {
	batting := sc.Score.Bowling.Team
	bowling := sc.Score.Batting.Team

	sc.CurrentInnings++
	sc.Score = models.InningsScore{
		Batting: models.BattingTally{Team: batting},
		Bowling: models.BowlingTally{Team: bowling},
	}
	// a side batting again starts from fresh cards
	if cards := sc.BattingOrder[batting.ID]; countWickets(cards) > 0 || battedBefore(sc, batting.ID) {
		delete(sc.BattingOrder, batting.ID)
		delete(sc.BowlingStats, bowling.ID)
	}
	ensureCards(sc, batting.ID)
	ensureCards(sc, bowling.ID)

	sc.CurrentBatsmen = models.CurrentBatsmen{}
	sc.CurrentBowler = nil
	sc.Partnership = models.Partnership{}
	sc.RecentOvers = []models.Over{}
	sc.LastWicket = ""

	if sc.CurrentInnings == sc.TotalInnings {
		target := aggregate(sc, bowling.ID) - aggregate(sc, batting.ID) + 1
		sc.Target = &target
	}
}

func battedBefore(sc *models.CricketScore, teamID string) bool {
	for _, in := range sc.CompletedInnings {
		if in.TeamID == teamID {
			return true
		}
	}
	return false
}

// aggregate sums a side's completed innings
func aggregate(sc *models.CricketScore, teamID string) int {
	total := 0
	for _, in := range sc.CompletedInnings {
		if in.TeamID == teamID {
			total += in.Runs
		}
	}
	return total
}

func completeMatch(sc *models.CricketScore, chased bool) {
	batting := sc.Score.Batting.Team
	bowling := sc.Score.Bowling.Team

	switch own, opp := aggregate(sc, batting.ID), aggregate(sc, bowling.ID); {
	case chased:
		left := wicketLimit(sc) - sc.Score.Batting.Wickets
		sc.Match.Result = fmt.Sprintf("%s won by %d %s", batting.Name, left, plural(left, "wicket"))
	case own == opp:
		sc.Match.Result = "Match tied"
	case own > opp:
		sc.Match.Result = fmt.Sprintf("%s won by %d %s", batting.Name, own-opp, plural(own-opp, "run"))
	default:
		sc.Match.Result = fmt.Sprintf("%s won by %d %s", bowling.Name, opp-own, plural(opp-own, "run"))
	}
	sc.Match.Status = models.StatusCompleted
	sc.CurrentBatsmen = models.CurrentBatsmen{}
	sc.CurrentBowler = nil
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
