package repository

import (
	"context"
	"fmt"
	"time"

	"tournament-registration/models"

	"gorm.io/gorm"
)

// Migrate creates the schema if it does not exist yet.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Tournament{}, &models.Participant{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SeedIfEmpty inserts one example tournament when the table has no rows.
// It reports whether a row was inserted.
func SeedIfEmpty(ctx context.Context, db *gorm.DB, now time.Time) (bool, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&models.Tournament{}).Count(&n).Error; err != nil {
		return false, fmt.Errorf("counting tournaments: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	seed := models.Tournament{
		Name:            fmt.Sprintf("Campeonato LoL %d", now.Year()),
		Description:     "Torneio de League of Legends para jogadores de todos os níveis",
		Game:            models.GameLeagueOfLegends,
		StartDate:       now.AddDate(0, 0, 7),
		EndDate:         now.AddDate(0, 0, 14),
		MaxParticipants: 16,
		Prize:           1000,
		Status:          models.StatusOpen,
		CreatedBy:       models.CreatedBySystem,
	}
	if err := db.WithContext(ctx).Create(&seed).Error; err != nil {
		return false, fmt.Errorf("seeding tournament: %w", err)
	}
	return true, nil
}
