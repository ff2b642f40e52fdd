package models

import "time"

// SportType identifies the scoring model a match uses
type SportType string

const (
	SportCricket    SportType = "cricket"
	SportFootball   SportType = "football"
	SportBasketball SportType = "basketball"
	SportHockey     SportType = "hockey"
	SportVolleyball SportType = "volleyball"
)

// MatchStatus represents the lifecycle state of a match
type MatchStatus string

const (
	StatusUpcoming  MatchStatus = "upcoming"
	StatusLive      MatchStatus = "live"
	StatusCompleted MatchStatus = "completed"
)

// Side names one of the two team slots of a match
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Other returns the opposing side
func (s Side) Other() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

// Valid reports whether s is home or away
func (s Side) Valid() bool {
	return s == SideHome || s == SideAway
}

// TossDecision is the toss winner's choice
type TossDecision string

const (
	DecisionBat  TossDecision = "bat"
	DecisionBowl TossDecision = "bowl"
)

// NoPlayer marks an optional player index as absent
const NoPlayer = -1

// Player is a roster entry owned by a Team
type Player struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	JerseyNumber   *int   `json:"jerseyNumber,omitempty"`
	Position       string `json:"position"`
	IsCaptain      bool   `json:"isCaptain"`
	IsWicketKeeper bool   `json:"isWicketKeeper"`
	IsSubstitute   bool   `json:"isSubstitute"`
}

// Team is an ordered roster
type Team struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Logo    string   `json:"logo"`
	Players []Player `json:"players"`
}

// Toss records the toss outcome. Its presence on a Match means the match has started.
type Toss struct {
	Winner   Team         `json:"winner"`
	Decision TossDecision `json:"decision"`
}

// Match is the fixture shared by every sport's live state
type Match struct {
	ID           string      `json:"id"`
	TournamentID string      `json:"tournamentId"`
	SportType    SportType   `json:"sportType"`
	Home         Team        `json:"home"`
	Away         Team        `json:"away"`
	Venue        string      `json:"venue"`
	Date         time.Time   `json:"date"`
	Status       MatchStatus `json:"status"`
	Result       string      `json:"result,omitempty"`
	Toss         *Toss       `json:"toss"`
}

// TeamBySide returns the team occupying the given slot
func (m *Match) TeamBySide(side Side) *Team {
	if side == SideAway {
		return &m.Away
	}
	return &m.Home
}

// SideOf returns the slot holding the team with the given id
func (m *Match) SideOf(teamID string) (Side, bool) {
	switch teamID {
	case m.Home.ID:
		return SideHome, true
	case m.Away.ID:
		return SideAway, true
	}
	return "", false
}
