package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tournament-registration/models"

	"gorm.io/gorm"
)

// SearchFilter narrows Search. Nil pointers mean "any".
type SearchFilter struct {
	Term   string
	Game   *models.GameType
	Status *models.TournamentStatus
}

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id uint) (*models.Tournament, error)
	ListActive(ctx context.Context) ([]models.Tournament, error)
	ListByGame(ctx context.Context, game models.GameType) ([]models.Tournament, error)
	Search(ctx context.Context, f SearchFilter) ([]models.Tournament, error)
	Delete(ctx context.Context, id uint) error

	AddParticipant(ctx context.Context, p *models.Participant) error
	RemoveParticipant(ctx context.Context, tournamentID uint, playerName string) error

	ListDueForTransition(ctx context.Context, now time.Time) ([]models.Tournament, error)
	UpdateStatus(ctx context.Context, id uint, from, to models.TournamentStatus) (bool, error)
	ListUnarchivedFinished(ctx context.Context, limit int) ([]models.Tournament, error)
	MarkArchived(ctx context.Context, id uint, at time.Time) error
}

type GormTournamentRepository struct {
	db *gorm.DB
}

func NewTournamentRepository(db *gorm.DB) *GormTournamentRepository {
	return &GormTournamentRepository{db: db}
}

func (r *GormTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	if err := t.ValidateSchedule(); err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("creating tournament: %w", err)
	}
	return nil
}

func (r *GormTournamentRepository) GetByID(ctx context.Context, id uint) (*models.Tournament, error) {
	var t models.Tournament
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("registered_at ASC, id ASC")
		}).
		First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrTournamentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading tournament %d: %w", id, err)
	}
	return &t, nil
}

func (r *GormTournamentRepository) ListActive(ctx context.Context) ([]models.Tournament, error) {
	var out []models.Tournament
	err := r.db.WithContext(ctx).
		Where("status IN ?", []models.TournamentStatus{models.StatusOpen, models.StatusInProgress}).
		Order("start_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing active tournaments: %w", err)
	}
	return out, nil
}

func (r *GormTournamentRepository) ListByGame(ctx context.Context, game models.GameType) ([]models.Tournament, error) {
	var out []models.Tournament
	err := r.db.WithContext(ctx).
		Where("game = ?", game).
		Order("start_date ASC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing %s tournaments: %w", game, err)
	}
	return out, nil
}

func (r *GormTournamentRepository) Search(ctx context.Context, f SearchFilter) ([]models.Tournament, error) {
	q := r.db.WithContext(ctx).Model(&models.Tournament{})
	if term := strings.TrimSpace(f.Term); term != "" {
		like := "%" + escapeLike(strings.ToLower(term)) + "%"
		q = q.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(description) LIKE ? ESCAPE '\\')", like, like)
	}
	if f.Game != nil {
		q = q.Where("game = ?", *f.Game)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var out []models.Tournament
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("searching tournaments: %w", err)
	}
	return out, nil
}

// Delete removes the tournament and all of its participants.
func (r *GormTournamentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tournament_id = ?", id).Delete(&models.Participant{}).Error; err != nil {
			return fmt.Errorf("deleting participants of %d: %w", id, err)
		}
		res := tx.Delete(&models.Tournament{}, id)
		if res.Error != nil {
			return fmt.Errorf("deleting tournament %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return models.ErrTournamentNotFound
		}
		return nil
	})
}

// AddParticipant claims a slot and inserts p in one transaction. The slot is
// claimed with a conditional increment so concurrent joins cannot overfill
// the tournament; duplicates are rechecked and finally caught by the unique
// indexes.
func (r *GormTournamentRepository) AddParticipant(ctx context.Context, p *models.Participant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Tournament{}).
			Where("id = ? AND participant_count < max_participants", p.TournamentID).
			UpdateColumn("participant_count", gorm.Expr("participant_count + 1"))
		if res.Error != nil {
			return fmt.Errorf("claiming slot in %d: %w", p.TournamentID, res.Error)
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.Tournament{}).Where("id = ?", p.TournamentID).Count(&n).Error; err != nil {
				return fmt.Errorf("checking tournament %d: %w", p.TournamentID, err)
			}
			if n == 0 {
				return models.ErrTournamentNotFound
			}
			return models.ErrTournamentFull
		}

		if existing, err := findParticipant(tx, p.TournamentID, "game_username_key", models.FoldKey(p.GameUsername)); err != nil {
			return err
		} else if existing != nil {
			return &models.DuplicateParticipantError{Field: models.DuplicateOnIdentifier, Value: p.GameUsername, ExistingPlayer: existing.PlayerName}
		}
		if existing, err := findParticipant(tx, p.TournamentID, "player_name_key", models.FoldKey(p.PlayerName)); err != nil {
			return err
		} else if existing != nil {
			return &models.DuplicateParticipantError{Field: models.DuplicateOnName, Value: p.PlayerName}
		}

		if err := tx.Create(p).Error; err != nil {
			if dup := duplicateFromDB(err, p); dup != nil {
				return dup
			}
			return fmt.Errorf("inserting participant: %w", err)
		}
		return nil
	})
}

// RemoveParticipant deletes the participant whose name matches
// case-insensitively and releases the slot.
func (r *GormTournamentRepository) RemoveParticipant(ctx context.Context, tournamentID uint, playerName string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := findParticipant(tx, tournamentID, "player_name_key", models.FoldKey(playerName))
		if err != nil {
			return err
		}
		if existing == nil {
			return models.ErrParticipantNotFound
		}
		if err := tx.Delete(existing).Error; err != nil {
			return fmt.Errorf("removing participant %d: %w", existing.ID, err)
		}
		return tx.Model(&models.Tournament{}).
			Where("id = ? AND participant_count > 0", tournamentID).
			UpdateColumn("participant_count", gorm.Expr("participant_count - 1")).Error
	})
}

// ListDueForTransition returns Open tournaments past their start and
// InProgress tournaments past their end.
func (r *GormTournamentRepository) ListDueForTransition(ctx context.Context, now time.Time) ([]models.Tournament, error) {
	var out []models.Tournament
	err := r.db.WithContext(ctx).
		Where("(status = ? AND start_date <= ?) OR (status = ? AND end_date <= ?)",
			models.StatusOpen, now, models.StatusInProgress, now).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing due tournaments: %w", err)
	}
	return out, nil
}

// UpdateStatus moves a tournament from one status to another. It reports false
// when the row was no longer in the expected status.
func (r *GormTournamentRepository) UpdateStatus(ctx context.Context, id uint, from, to models.TournamentStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Tournament{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, fmt.Errorf("updating status of %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormTournamentRepository) ListUnarchivedFinished(ctx context.Context, limit int) ([]models.Tournament, error) {
	var out []models.Tournament
	err := r.db.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("registered_at ASC, id ASC")
		}).
		Where("status = ? AND archived_at IS NULL", models.StatusFinished).
		Order("end_date ASC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("listing unarchived tournaments: %w", err)
	}
	return out, nil
}

func (r *GormTournamentRepository) MarkArchived(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Tournament{}).
		Where("id = ?", id).
		UpdateColumn("archived_at", at).Error
}

func findParticipant(tx *gorm.DB, tournamentID uint, keyColumn, key string) (*models.Participant, error) {
	var found []models.Participant
	err := tx.Where("tournament_id = ? AND "+keyColumn+" = ?", tournamentID, key).
		Limit(1).
		Find(&found).Error
	if err != nil {
		return nil, fmt.Errorf("looking up participant: %w", err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
