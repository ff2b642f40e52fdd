package models

import "time"

// UniversalScore is the generic score-counter model used for every non-cricket sport
type UniversalScore struct {
	Match       Match        `json:"match"`
	Scores      SideScores   `json:"scores"`
	Period      int          `json:"period"`
	PeriodLabel string       `json:"periodLabel,omitempty"` // "Q4", "2nd half"
	Events      []MatchEvent `json:"events"`
}

// SideScores holds one counter per team slot
type SideScores struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Get returns the score of the given side
func (s SideScores) Get(side Side) int {
	if side == SideAway {
		return s.Away
	}
	return s.Home
}

// Adjust adds delta to the side's score, clamping at zero, and returns the new score
func (s *SideScores) Adjust(side Side, delta int) int {
	score := &s.Home
	if side == SideAway {
		score = &s.Away
	}
	*score += delta
	if *score < 0 {
		*score = 0
	}
	return *score
}

// MatchEvent is an entry in a universal match's event log
type MatchEvent struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"` // "goal", "foul", "timeout", ...
	Team        Side      `json:"team"`
	Player      string    `json:"player,omitempty"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
