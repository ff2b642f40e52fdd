package cricketmath

import "github.com/playgenz/livescore/pkg/models"

// StrikeRate returns runs per hundred balls faced
// 30 runs off 25 balls → 120.00
// Zero balls → 0
func StrikeRate(runs, balls int) float64 {
	if balls <= 0 {
		return 0
	}
	return round2(float64(runs) / float64(balls) * 100)
}

// Economy returns runs conceded per over bowled
// 20 runs in 4.0 overs → 5.00
// 13 runs in 1.3 overs → 8.67
// Zero overs → 0
func Economy(runs int, overs float64) float64 {
	o := trueOvers(overs)
	if o == 0 {
		return 0
	}
	return round2(float64(runs) / o)
}

// RunRate returns runs scored per over
// 90 runs in 10.0 overs → 9.00
func RunRate(runs int, overs float64) float64 {
	o := trueOvers(overs)
	if o == 0 {
		return 0
	}
	return round2(float64(runs) / o)
}

// RequiredRunRate returns the runs per over needed to reach target
// target 180, scored 90, 10.0 overs remaining → 9.00
// Zero overs remaining or target already reached → 0
func RequiredRunRate(target, runsScored int, oversRemaining float64) float64 {
	o := trueOvers(oversRemaining)
	needed := target - runsScored
	if o == 0 || needed <= 0 {
		return 0
	}
	return round2(float64(needed) / o)
}

// PartnershipRate returns the current pair's runs per over
// 45 runs off 30 balls → 9.00
func PartnershipRate(runs, balls int) float64 {
	if balls <= 0 {
		return 0
	}
	return round2(float64(runs) / float64(balls) * BallsPerOver)
}

// FormatLimits returns the overs per innings (0 = unlimited) and innings count of a format
func FormatLimits(format models.Format) (maxOvers, innings int) {
	switch format {
	case models.FormatT20:
		return 20, 2
	case models.FormatODI:
		return 50, 2
	case models.FormatTest:
		return 0, 4
	}
	return 20, 2
}

// OversRemaining returns the overs left in a limited-overs innings, or 0 when unlimited
func OversRemaining(format models.Format, bowled float64) float64 {
	maxOvers, _ := FormatLimits(format)
	if maxOvers == 0 {
		return 0
	}
	left := maxOvers*BallsPerOver - OversToBalls(bowled)
	if left <= 0 {
		return 0
	}
	return BallsToOvers(left)
}

// Derive recomputes every derived field stored on the scorecard
func Derive(sc *models.CricketScore) {
	for team, cards := range sc.BattingOrder {
		for i := range cards {
			cards[i].StrikeRate = StrikeRate(cards[i].Runs, cards[i].Balls)
		}
		sc.BattingOrder[team] = cards
	}
	for team, cards := range sc.BowlingStats {
		for i := range cards {
			cards[i].Economy = Economy(cards[i].Runs, cards[i].Overs)
		}
		sc.BowlingStats[team] = cards
	}
	if b := sc.CurrentBatsmen.Striker; b != nil {
		b.StrikeRate = StrikeRate(b.Runs, b.Balls)
	}
	if b := sc.CurrentBatsmen.NonStriker; b != nil {
		b.StrikeRate = StrikeRate(b.Runs, b.Balls)
	}
	if b := sc.CurrentBowler; b != nil {
		b.Economy = Economy(b.Runs, b.Overs)
	}
	sc.CurrentRunRate = RunRate(sc.Score.Batting.Runs, sc.Score.Batting.Overs)
}
