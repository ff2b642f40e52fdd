package cricket

import "github.com/playgenz/livescore/pkg/models"

// AddPlayer appends p to the squad on side. Its batting card is opened on
// first selection, in roster order.
func AddPlayer(sc *models.CricketScore, side models.Side, p models.Player) error {
	if !side.Valid() {
		return ErrInvalidSide
	}
	if p.ID == "" || p.Name == "" {
		return ErrInvalidPlayer
	}
	team := sc.Match.TeamBySide(side)
	if _, ok := findPlayer(team.Players, p.ID); ok {
		return ErrDuplicatePlayer
	}
	team.Players = append(team.Players, p)
	return nil
}
