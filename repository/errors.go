package repository

import (
	"errors"
	"strings"

	"tournament-registration/models"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const nameIndex = "idx_participant_name"

// duplicateFromDB maps a unique-index violation raised by the insert to the
// matching domain error. It returns nil for any other error.
func duplicateFromDB(err error, p *models.Participant) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr):
		if pgErr.Code != pgerrcode.UniqueViolation {
			return nil
		}
		return duplicateFor(pgErr.ConstraintName == nameIndex, p)
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return duplicateFor(strings.Contains(err.Error(), "player_name_key"), p)
	}
	return nil
}

func duplicateFor(onName bool, p *models.Participant) error {
	if onName {
		return &models.DuplicateParticipantError{Field: models.DuplicateOnName, Value: p.PlayerName}
	}
	return &models.DuplicateParticipantError{Field: models.DuplicateOnIdentifier, Value: p.GameUsername}
}
