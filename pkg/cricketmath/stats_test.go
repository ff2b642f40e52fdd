package cricketmath_test

import (
	"math"
	"testing"

	"github.com/playgenz/livescore/pkg/cricketmath"
	"github.com/playgenz/livescore/pkg/models"
)

func TestStrikeRate(t *testing.T) {
	tests := []struct {
		name  string
		runs  int
		balls int
		want  float64
	}{
		{"30 off 25", 30, 25, 120.00},
		{"no balls faced", 12, 0, 0},
		{"duck", 0, 7, 0},
		{"rounds to two places", 10, 3, 333.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cricketmath.StrikeRate(tt.runs, tt.balls)
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("StrikeRate(%d, %d) = %f, want %f", tt.runs, tt.balls, got, tt.want)
			}
		})
	}
}

func TestEconomy(t *testing.T) {
	tests := []struct {
		name  string
		runs  int
		overs float64
		want  float64
	}{
		{"20 in 4 overs", 20, 4, 5.00},
		{"zero overs", 20, 0, 0},
		{"partial over uses true balls", 13, 1.3, 8.67},
		{"maiden", 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cricketmath.Economy(tt.runs, tt.overs)
			if math.IsInf(got, 0) || math.IsNaN(got) {
				t.Fatalf("Economy(%d, %v) = %v", tt.runs, tt.overs, got)
			}
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("Economy(%d, %v) = %f, want %f", tt.runs, tt.overs, got, tt.want)
			}
		})
	}
}

func TestRunRates(t *testing.T) {
	if got := cricketmath.RunRate(90, 10); got != 9 {
		t.Errorf("RunRate(90, 10) = %f, want 9", got)
	}
	if got := cricketmath.RunRate(90, 0); got != 0 {
		t.Errorf("RunRate(90, 0) = %f, want 0", got)
	}
	if got := cricketmath.RequiredRunRate(180, 90, 10); got != 9 {
		t.Errorf("RequiredRunRate(180, 90, 10) = %f, want 9", got)
	}
	if got := cricketmath.RequiredRunRate(180, 90, 0); got != 0 {
		t.Errorf("RequiredRunRate with no overs left = %f, want 0", got)
	}
	if got := cricketmath.RequiredRunRate(100, 120, 5); got != 0 {
		t.Errorf("RequiredRunRate after target reached = %f, want 0", got)
	}
	if got := cricketmath.PartnershipRate(45, 30); got != 9 {
		t.Errorf("PartnershipRate(45, 30) = %f, want 9", got)
	}
	if got := cricketmath.PartnershipRate(0, 0); got != 0 {
		t.Errorf("PartnershipRate(0, 0) = %f, want 0", got)
	}
}

func TestFormatOvers(t *testing.T) {
	tests := []struct {
		overs float64
		want  string
	}{
		{8.3, "8.3"},
		{8.0, "8.0"},
		{0, "0.0"},
		{0.5, "0.5"},
		{19.5, "19.5"},
		{8.95, "9.0"},
		{8.99, "9.0"},
		{8.6, "9.0"},
		{8.45, "8.5"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := cricketmath.FormatOvers(tt.overs); got != tt.want {
				t.Errorf("FormatOvers(%v) = %q, want %q", tt.overs, got, tt.want)
			}
		})
	}
}

func TestBallAccounting(t *testing.T) {
	if got := cricketmath.OversToBalls(8.3); got != 51 {
		t.Errorf("OversToBalls(8.3) = %d, want 51", got)
	}
	if got := cricketmath.OversToBalls(8.95); got != 54 {
		t.Errorf("OversToBalls(8.95) = %d, want 54", got)
	}
	if got := cricketmath.BallsToOvers(51); got != 8.3 {
		t.Errorf("BallsToOvers(51) = %v, want 8.3", got)
	}
	if got := cricketmath.AddLegalBall(8.5); got != 9.0 {
		t.Errorf("AddLegalBall(8.5) = %v, want 9.0", got)
	}
	if got := cricketmath.AddLegalBall(0); got != 0.1 {
		t.Errorf("AddLegalBall(0) = %v, want 0.1", got)
	}
	if got := cricketmath.OversRemaining(models.FormatT20, 10.2); got != 9.4 {
		t.Errorf("OversRemaining(T20, 10.2) = %v, want 9.4", got)
	}
	if got := cricketmath.OversRemaining(models.FormatTest, 10.2); got != 0 {
		t.Errorf("OversRemaining(Test, 10.2) = %v, want 0", got)
	}
}

func TestDismissalDescription(t *testing.T) {
	tests := []struct {
		kind    models.DismissalType
		bowler  string
		fielder string
		want    string
	}{
		{models.DismissalBowled, "A", "", "b A"},
		{models.DismissalCaught, "A", "B", "c B b A"},
		{models.DismissalLBW, "A", "", "lbw b A"},
		{models.DismissalStumped, "A", "K", "st K b A"},
		{models.DismissalRunOut, "", "C", "run out (C)"},
		{models.DismissalHitWicket, "A", "", "hit wicket b A"},
		{models.DismissalRetiredHurt, "", "", "retiredHurt"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := cricketmath.DismissalDescription(tt.kind, tt.bowler, tt.fielder); got != tt.want {
				t.Errorf("DismissalDescription(%s) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestDerive(t *testing.T) {
	striker := models.BattingCard{Player: models.Player{ID: "p1"}, Runs: 30, Balls: 25}
	bowler := models.BowlingCard{Player: models.Player{ID: "b1"}, Runs: 20, Overs: 4}
	sc := &models.CricketScore{
		Score: models.InningsScore{Batting: models.BattingTally{Runs: 90, Overs: 10}},
		BattingOrder: map[string][]models.BattingCard{
			"t1": {striker, {Player: models.Player{ID: "p2"}}},
		},
		BowlingStats: map[string][]models.BowlingCard{
			"t2": {bowler},
		},
		CurrentBatsmen: models.CurrentBatsmen{Striker: &striker},
		CurrentBowler:  &bowler,
	}

	cricketmath.Derive(sc)

	if sc.BattingOrder["t1"][0].StrikeRate != 120 {
		t.Errorf("batting card strike rate = %v, want 120", sc.BattingOrder["t1"][0].StrikeRate)
	}
	if sc.BattingOrder["t1"][1].StrikeRate != 0 {
		t.Errorf("unfaced batter strike rate = %v, want 0", sc.BattingOrder["t1"][1].StrikeRate)
	}
	if sc.BowlingStats["t2"][0].Economy != 5 {
		t.Errorf("bowling economy = %v, want 5", sc.BowlingStats["t2"][0].Economy)
	}
	if sc.CurrentBatsmen.Striker.StrikeRate != 120 || sc.CurrentBowler.Economy != 5 {
		t.Error("current slots were not derived")
	}
	if sc.CurrentRunRate != 9 {
		t.Errorf("current run rate = %v, want 9", sc.CurrentRunRate)
	}
}
