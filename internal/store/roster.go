package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/playgenz/livescore/internal/patch"
	"github.com/playgenz/livescore/pkg/models"
)

// matchView is the part of every sport's scorecard that holds the match
type matchView struct {
	Match models.Match `json:"match"`
}

func decodeMatch(t patch.Tree, m *matchView) error {
	if err := patch.Decode(t, m); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return nil
}

// AddPlayerToTeam appends a player to a team roster of the active sport. A
// player without an id is given one. Cricket squads are mirrored to the
// server, which resolves later selections by roster position.
func (s *Store) AddPlayerToTeam(ctx context.Context, side models.Side, player models.Player) (models.Player, error) {
	player.Name = strings.TrimSpace(player.Name)
	if player.ID == "" {
		player.ID = uuid.NewString()
	}

	s.mu.Lock()
	var err error
	sport := s.sport
	switch {
	case !s.open:
		err = ErrNotOpen
	case !side.Valid():
		err = ErrInvalidSide
	case player.Name == "":
		err = ErrInvalidPlayer
	default:
		err = mutate(s, OpAddPlayerToTeam, func(m *matchView) error {
			team := m.Match.TeamBySide(side)
			for _, p := range team.Players {
				if p.ID == player.ID {
					return ErrDuplicatePlayer
				}
			}
			team.Players = append(team.Players, player)
			return nil
		})
	}
	s.mu.Unlock()
	if err != nil {
		return models.Player{}, s.fail(OpAddPlayerToTeam, err)
	}
	s.notifier.Success(player.Name + " added to the squad")
	if sport == models.SportCricket {
		s.forward(ctx, OpAddPlayerToTeam, models.AddPlayerIntent{Side: side, Player: player})
	}
	return player, nil
}

// UpdateUniversalScore adds delta to a side's score, never going below zero
func (s *Store) UpdateUniversalScore(side models.Side, delta int) (int, error) {
	var score int
	err := s.universal(OpUpdateUniversalScore, side, func(us *models.UniversalScore) error {
		score = us.Scores.Adjust(side, delta)
		return nil
	})
	if err != nil {
		return 0, s.fail(OpUpdateUniversalScore, err)
	}
	s.notifier.Success(fmt.Sprintf("Score updated: %s %d", side, score))
	return score, nil
}

// AddEvent appends an entry to a universal match's event log
func (s *Store) AddEvent(eventType string, side models.Side, player, description string) (models.MatchEvent, error) {
	ev := models.MatchEvent{
		ID:          uuid.NewString(),
		Type:        strings.TrimSpace(eventType),
		Team:        side,
		Player:      player,
		Description: description,
		Timestamp:   time.Now().UTC(),
	}
	err := s.universal(OpAddEvent, side, func(us *models.UniversalScore) error {
		if ev.Type == "" {
			return ErrInvalidEvent
		}
		us.Events = append(us.Events, ev)
		return nil
	})
	if err != nil {
		return models.MatchEvent{}, s.fail(OpAddEvent, err)
	}
	s.notifier.Success("Event added: " + ev.Type)
	return ev, nil
}

func (s *Store) universal(op Operation, side models.Side, fn func(*models.UniversalScore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case !s.open:
		return ErrNotOpen
	case s.sport == models.SportCricket:
		return ErrWrongSport
	case !side.Valid():
		return ErrInvalidSide
	}
	return mutate(s, op, fn)
}
