package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Whitespace-only names count as missing
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// Accepted date layouts: RFC 3339 and the HTML datetime-local input.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"}

type createTournamentRequest struct {
	Name            string  `json:"name" form:"name" validate:"required,notblank,max=200"`
	Description     string  `json:"description" form:"description" validate:"max=1000"`
	GameType        string  `json:"game_type" form:"game_type" validate:"required"`
	StartDate       string  `json:"start_date" form:"start_date" validate:"required"`
	EndDate         string  `json:"end_date" form:"end_date" validate:"required"`
	MaxParticipants int     `json:"max_participants" form:"max_participants" validate:"required,min=2,max=100"`
	Prize           float64 `json:"prize" form:"prize" validate:"min=0"`
}

type joinTournamentRequest struct {
	TournamentID uint   `json:"tournament_id" form:"tournament_id" validate:"required"`
	PlayerName   string `json:"player_name" form:"player_name" validate:"required,notblank,max=100"`
	GameUsername string `json:"game_username" form:"game_username" validate:"required,notblank,max=50"`
}

type playerLookupRequest struct {
	Username string `json:"username" form:"username"`
	GameType string `json:"gameType" form:"gameType"`
}

type leaveTournamentRequest struct {
	TournamentID uint   `json:"tournamentId" form:"tournamentId" validate:"required"`
	PlayerName   string `json:"playerName" form:"playerName" validate:"required,notblank"`
}

// formatValidationErrors converts validator.ValidationErrors into a map keyed
// by JSON field name.
func formatValidationErrors(err error) map[string]string {
	out := map[string]string{}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		out["error"] = err.Error()
		return out
	}
	for _, fe := range errs {
		field := fe.Field()
		switch fe.Tag() {
		case "required", "notblank":
			out[field] = fmt.Sprintf("The %s field is required.", field)
		case "min":
			out[field] = fmt.Sprintf("The %s field must be at least %s.", field, fe.Param())
		case "max":
			out[field] = fmt.Sprintf("The %s field must not exceed %s.", field, fe.Param())
		default:
			out[field] = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag.", field, fe.Tag())
		}
	}
	return out
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
