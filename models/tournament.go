package models

import (
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

const (
	CreatedByOrganizer = "Organizer"
	CreatedBySystem    = "system"
)

// Tournament is a registration window for a single game.
type Tournament struct {
	ID              uint             `json:"id" gorm:"primaryKey"`
	Name            string           `json:"name" gorm:"size:200;not null"`
	Slug            string           `json:"slug" gorm:"size:220;index"`
	Description     string           `json:"description,omitempty" gorm:"size:1000"`
	Game            GameType         `json:"game" gorm:"not null;index"`
	StartDate       time.Time        `json:"start_date" gorm:"not null"`
	EndDate         time.Time        `json:"end_date" gorm:"not null"`
	MaxParticipants int              `json:"max_participants" gorm:"not null"`
	Prize           float64          `json:"prize" gorm:"type:numeric(18,2);default:0"`
	Status          TournamentStatus `json:"status" gorm:"not null;default:1;index"`
	CreatedBy       string           `json:"created_by" gorm:"size:100;not null"`
	CreatedAt       time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time        `json:"updated_at" gorm:"autoUpdateTime"`

	// Maintained by the repository inside the join/leave transactions.
	ParticipantCount int `json:"participant_count" gorm:"not null;default:0"`

	// 📦 Roster snapshot upload, set once the tournament is finished
	ArchivedAt *time.Time `json:"archived_at,omitempty"`

	// Relationships
	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:TournamentID;constraint:OnDelete:CASCADE"`
}

func (t *Tournament) BeforeCreate(tx *gorm.DB) error {
	if err := t.ValidateSchedule(); err != nil {
		return err
	}
	if t.Slug == "" {
		t.Slug = slug.Make(t.Name)
	}
	return nil
}

func (t *Tournament) ValidateSchedule() error {
	if !t.EndDate.After(t.StartDate) {
		return ErrInvalidSchedule
	}
	return nil
}

// IsFull counts loaded participants when present, the stored counter otherwise.
func (t *Tournament) IsFull() bool {
	return t.CurrentParticipants() >= t.MaxParticipants
}

func (t *Tournament) CurrentParticipants() int {
	if len(t.Participants) > t.ParticipantCount {
		return len(t.Participants)
	}
	return t.ParticipantCount
}
