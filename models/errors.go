package models

import (
	"errors"
	"fmt"
)

var (
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrTournamentFull      = errors.New("tournament is full")
	ErrParticipantNotFound = errors.New("participant not found in this tournament")
	ErrDuplicateIdentifier = errors.New("riot id already registered in this tournament")
	ErrDuplicateName       = errors.New("player name already registered in this tournament")
	ErrInvalidSchedule     = errors.New("end date must be after start date")
)

// DuplicateField names which participant attribute collided.
type DuplicateField string

const (
	DuplicateOnIdentifier DuplicateField = "game_username"
	DuplicateOnName       DuplicateField = "player_name"
)

// DuplicateParticipantError is returned when a join collides with an existing
// participant. It matches ErrDuplicateIdentifier or ErrDuplicateName via errors.Is.
type DuplicateParticipantError struct {
	Field          DuplicateField
	Value          string
	ExistingPlayer string
}

func (e *DuplicateParticipantError) Error() string {
	if e.Field == DuplicateOnIdentifier {
		if e.ExistingPlayer != "" {
			return fmt.Sprintf("Riot ID '%s' is already registered in this tournament by player '%s'", e.Value, e.ExistingPlayer)
		}
		return fmt.Sprintf("Riot ID '%s' is already registered in this tournament", e.Value)
	}
	return fmt.Sprintf("Player name '%s' is already taken in this tournament", e.Value)
}

func (e *DuplicateParticipantError) Is(target error) bool {
	switch target {
	case ErrDuplicateIdentifier:
		return e.Field == DuplicateOnIdentifier
	case ErrDuplicateName:
		return e.Field == DuplicateOnName
	}
	return false
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrTournamentNotFound) || errors.Is(err, ErrParticipantNotFound)
}
