package models

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

// Participant is a verified player registered in a tournament.
type Participant struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	TournamentID uint   `json:"tournament_id" gorm:"not null;index;uniqueIndex:idx_participant_name,priority:1;uniqueIndex:idx_participant_username,priority:1"`
	PlayerName   string `json:"player_name" gorm:"size:100;not null"`
	GameUsername string `json:"game_username" gorm:"size:50;not null"` // Riot ID, name#tag

	// Case-folded copies backing the per-tournament uniqueness constraints.
	// Unsized since folding can expand a rune to up to three.
	PlayerNameKey   string `json:"-" gorm:"type:text;not null;uniqueIndex:idx_participant_name,priority:2"`
	GameUsernameKey string `json:"-" gorm:"type:text;not null;uniqueIndex:idx_participant_username,priority:2"`

	Rank         string    `json:"rank,omitempty" gorm:"size:100"` // e.g. "Ouro II (40 LP)"
	UserID       string    `json:"user_id" gorm:"size:100"`
	RegisteredAt time.Time `json:"registered_at" gorm:"not null;index"`
	Points       int       `json:"points" gorm:"default:0"`   // reserved
	Position     int       `json:"position" gorm:"default:0"` // reserved
	APIData      string    `json:"api_data,omitempty" gorm:"column:api_data;size:500"`
}

func (p *Participant) BeforeSave(tx *gorm.DB) error {
	p.PlayerNameKey = FoldKey(p.PlayerName)
	p.GameUsernameKey = FoldKey(p.GameUsername)
	return nil
}

// FoldKey is the case-insensitive comparison form of a name or Riot ID.
func FoldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// SameName reports whether two display names collide within a tournament.
func SameName(a, b string) bool {
	return FoldKey(a) == FoldKey(b)
}
