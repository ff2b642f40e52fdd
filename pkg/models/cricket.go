package models

// Format is the cricket match format
type Format string

const (
	FormatT20  Format = "T20"
	FormatODI  Format = "ODI"
	FormatTest Format = "Test"
)

// ExtraType classifies a run not credited to the batter
type ExtraType string

const (
	ExtraWide    ExtraType = "wide"
	ExtraNoBall  ExtraType = "noBall"
	ExtraBye     ExtraType = "bye"
	ExtraLegBye  ExtraType = "legBye"
	ExtraPenalty ExtraType = "penalty"
)

// Legal reports whether a delivery carrying this extra counts toward the over
func (e ExtraType) Legal() bool {
	return e != ExtraWide && e != ExtraNoBall
}

// DismissalType is how a batter got out
type DismissalType string

const (
	DismissalBowled           DismissalType = "bowled"
	DismissalCaught           DismissalType = "caught"
	DismissalLBW              DismissalType = "lbw"
	DismissalStumped          DismissalType = "stumped"
	DismissalRunOut           DismissalType = "runOut"
	DismissalHitWicket        DismissalType = "hitWicket"
	DismissalRetiredHurt      DismissalType = "retiredHurt"
	DismissalObstructingField DismissalType = "obstructingField"
	DismissalTimedOut         DismissalType = "timedOut"
	DismissalHandledBall      DismissalType = "handledBall"
)

// Valid reports whether d is a known dismissal type
func (d DismissalType) Valid() bool {
	switch d {
	case DismissalBowled, DismissalCaught, DismissalLBW, DismissalStumped, DismissalRunOut,
		DismissalHitWicket, DismissalRetiredHurt, DismissalObstructingField, DismissalTimedOut,
		DismissalHandledBall:
		return true
	}
	return false
}

// Valid reports whether e is a known extra type
func (e ExtraType) Valid() bool {
	switch e {
	case ExtraWide, ExtraNoBall, ExtraBye, ExtraLegBye, ExtraPenalty:
		return true
	}
	return false
}

// CreditsBowler reports whether the bowler is credited with the wicket
func (d DismissalType) CreditsBowler() bool {
	switch d {
	case DismissalBowled, DismissalCaught, DismissalLBW, DismissalStumped, DismissalHitWicket:
		return true
	}
	return false
}

// CricketScore is the root of a cricket match's live state
type CricketScore struct {
	Match          Match                    `json:"match"`
	Format         Format                   `json:"format"`
	CurrentInnings int                      `json:"currentInnings"`
	TotalInnings   int                      `json:"totalInnings"`
	Score          InningsScore             `json:"score"`
	BattingOrder   map[string][]BattingCard `json:"battingOrder"` // team id -> cards
	BowlingStats   map[string][]BowlingCard `json:"bowlingStats"` // team id -> cards
	CurrentBatsmen CurrentBatsmen           `json:"currentBatsmen"`
	CurrentBowler  *BowlingCard             `json:"currentBowler"`
	RecentOvers    []Over                   `json:"recentOvers"`
	Partnership    Partnership              `json:"partnership"`
	CurrentRunRate float64                  `json:"currentRunRate"`
	Target         *int                     `json:"target"`
	LastWicket     string                   `json:"lastWicket"`

	CompletedInnings []InningsSummary `json:"completedInnings,omitempty"`
}

// InningsSummary is the closing total of a finished innings
type InningsSummary struct {
	Number  int     `json:"number"`
	TeamID  string  `json:"teamId"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Overs   float64 `json:"overs"`
}

// InningsScore holds the running totals of the current innings
type InningsScore struct {
	Batting BattingTally `json:"batting"`
	Bowling BowlingTally `json:"bowling"`
}

// BattingTally is the batting side's total
type BattingTally struct {
	Team    Team    `json:"team"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Overs   float64 `json:"overs"` // N.B: N complete overs + B legal balls
	Extras  Extras  `json:"extras"`
}

// BowlingTally identifies the fielding side
type BowlingTally struct {
	Team Team `json:"team"`
}

// Extras breaks down runs not credited to batters
type Extras struct {
	Wide    int `json:"wide"`
	NoBall  int `json:"noBall"`
	Byes    int `json:"byes"`
	LegByes int `json:"legByes"`
	Penalty int `json:"penalty"`
}

// Total sums every extra
func (e Extras) Total() int {
	return e.Wide + e.NoBall + e.Byes + e.LegByes + e.Penalty
}

// CurrentBatsmen holds the two active batting slots
type CurrentBatsmen struct {
	Striker    *BattingCard `json:"striker"`
	NonStriker *BattingCard `json:"nonStriker"`
}

// BattingCard is one batter's innings
type BattingCard struct {
	Player     Player     `json:"player"`
	Runs       int        `json:"runs"`
	Balls      int        `json:"balls"`
	Fours      int        `json:"fours"`
	Sixes      int        `json:"sixes"`
	StrikeRate float64    `json:"strikeRate"` // derived
	Dismissal  *Dismissal `json:"dismissal"`
}

// Out reports whether the batter has been dismissed
func (b BattingCard) Out() bool {
	return b.Dismissal != nil
}

// Dismissal describes how a batter got out
type Dismissal struct {
	Type        DismissalType `json:"type"`
	Bowler      string        `json:"bowler,omitempty"`
	Fielder     string        `json:"fielder,omitempty"`
	Description string        `json:"description"`
}

// BowlingCard is one bowler's figures
type BowlingCard struct {
	Player  Player  `json:"player"`
	Overs   float64 `json:"overs"`
	Maidens int     `json:"maidens"`
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Economy float64 `json:"economy"` // derived
	Dots    int     `json:"dots"`
	Wides   int     `json:"wides"`
	NoBalls int     `json:"noBalls"`
}

// Over is a sequence of deliveries; a completed over holds exactly six legal ones
type Over struct {
	Number     int        `json:"number"`
	Bowler     string     `json:"bowler,omitempty"` // player id
	Deliveries []Delivery `json:"deliveries"`
	Runs       int        `json:"runs"`
	Wickets    int        `json:"wickets"`
}

// LegalBalls counts deliveries that advanced the over
func (o Over) LegalBalls() int {
	n := 0
	for _, d := range o.Deliveries {
		if d.IsLegal {
			n++
		}
	}
	return n
}

// Delivery is a single ball
type Delivery struct {
	Runs        int       `json:"runs"`
	IsExtra     bool      `json:"isExtra"`
	ExtraType   ExtraType `json:"extraType,omitempty"`
	IsWicket    bool      `json:"isWicket"`
	IsLegal     bool      `json:"isLegal"`
	Description string    `json:"description,omitempty"`
}

// Partnership is the running tally of the current batting pair
type Partnership struct {
	Runs  int `json:"runs"`
	Balls int `json:"balls"`
}

// BattingCardsFor returns the batting order of the given team, or nil
func (c *CricketScore) BattingCardsFor(teamID string) []BattingCard {
	if c.BattingOrder == nil {
		return nil
	}
	return c.BattingOrder[teamID]
}

// BowlingCardsFor returns the bowling figures of the given team, or nil
func (c *CricketScore) BowlingCardsFor(teamID string) []BowlingCard {
	if c.BowlingStats == nil {
		return nil
	}
	return c.BowlingStats[teamID]
}
