package store

import "errors"

var (
	ErrMatchPaused     = errors.New("match is paused")
	ErrNotOpen         = errors.New("store is not open")
	ErrWrongStep       = errors.New("setup step is not available")
	ErrSetupIncomplete = errors.New("setup selections are incomplete")
	ErrWrongSport      = errors.New("operation does not apply to this sport")
	ErrInvalidSide     = errors.New("team must be home or away")
	ErrInvalidPlayer   = errors.New("player needs a name")
	ErrDuplicatePlayer = errors.New("player is already on the roster")
	ErrInvalidEvent    = errors.New("event needs a type")
	ErrMalformedState  = errors.New("scorecard state could not be decoded")
)
