package models

import (
	"encoding/json"
	"time"
)

// ScoreUpdateIntent is a ball-by-ball scorer intent
type ScoreUpdateIntent struct {
	Runs      int       `json:"runs"`
	IsExtra   bool      `json:"isExtra"`
	ExtraType ExtraType `json:"extraType,omitempty"`
}

// MatchSetupIntent carries the toss and opening selections, by id
type MatchSetupIntent struct {
	BattingTeam    string         `json:"battingTeam"`
	BowlingTeam    string         `json:"bowlingTeam"`
	Toss           TossIntent     `json:"toss"`
	PlayerSettings PlayerSettings `json:"playerSettings"`
}

// TossIntent is the toss portion of a setup intent
type TossIntent struct {
	Winner   string       `json:"winner"`
	Decision TossDecision `json:"decision"`
}

// PlayerSettings names the opening batters and bowler
type PlayerSettings struct {
	SelectedStriker    string `json:"selectedStriker"`
	SelectedNonStriker string `json:"selectedNonStriker"`
	SelectedBowler     string `json:"selectedBowler"`
}

// DismissalIntent mirrors a locally recorded dismissal
type DismissalIntent struct {
	BatterIndex   int           `json:"batterIndex"`
	DismissalType DismissalType `json:"dismissalType"`
	BowlerIndex   int           `json:"bowlerIndex"`
	FielderIndex  int           `json:"fielderIndex"`
}

// SelectBatsmanIntent mirrors a locally selected batter
type SelectBatsmanIntent struct {
	PlayerIndex int  `json:"playerIndex"`
	AsStriker   bool `json:"asStriker"`
}

// SelectBowlerIntent mirrors a locally selected bowler
type SelectBowlerIntent struct {
	BowlerIndex int `json:"bowlerIndex"`
}

// AddPlayerIntent mirrors a player added to a squad. Later selections refer
// to the player by roster position, so the server roster must match.
type AddPlayerIntent struct {
	Side   Side   `json:"side"`
	Player Player `json:"player"`
}

// Intent is a scorer intent as carried on the intents stream
type Intent struct {
	ID         string          `json:"id"`
	MatchID    string          `json:"matchId"`
	Route      Route           `json:"route"`
	Payload    json.RawMessage `json:"payload"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// Delta is a canonical partial scorecard tree pushed to every viewer of a match
type Delta struct {
	MatchID    string                 `json:"matchId"`
	Patch      map[string]interface{} `json:"patch"`
	Error      *ErrorMessage          `json:"error,omitempty"`
	ProducedAt time.Time              `json:"producedAt"`
}
