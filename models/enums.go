package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// GameType is the title a tournament is played on.
type GameType int

const (
	GameLeagueOfLegends GameType = 1
	GameValorant        GameType = 2
)

// Games lists every supported title in display order.
var Games = []GameType{GameLeagueOfLegends, GameValorant}

func (g GameType) String() string {
	switch g {
	case GameLeagueOfLegends:
		return "LeagueOfLegends"
	case GameValorant:
		return "Valorant"
	}
	return fmt.Sprintf("GameType(%d)", int(g))
}

func (g GameType) DisplayName() string {
	switch g {
	case GameLeagueOfLegends:
		return "League of Legends"
	case GameValorant:
		return "Valorant"
	}
	return g.String()
}

func (g GameType) Valid() bool {
	return g == GameLeagueOfLegends || g == GameValorant
}

// ParseGameType accepts the enum name (any case) or its numeric value.
func ParseGameType(s string) (GameType, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		g := GameType(n)
		if g.Valid() {
			return g, nil
		}
		return 0, fmt.Errorf("unknown game %q", s)
	}
	for _, g := range Games {
		if strings.EqualFold(s, g.String()) || strings.EqualFold(s, g.DisplayName()) {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown game %q", s)
}

func (g GameType) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *GameType) UnmarshalText(b []byte) error {
	parsed, err := ParseGameType(string(b))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

func (g *GameType) UnmarshalJSON(b []byte) error {
	return g.UnmarshalText(unquote(b))
}

// TournamentStatus is the lifecycle state of a tournament.
type TournamentStatus int

const (
	StatusOpen       TournamentStatus = 1
	StatusInProgress TournamentStatus = 2
	StatusFinished   TournamentStatus = 3
	StatusCancelled  TournamentStatus = 4
)

var Statuses = []TournamentStatus{StatusOpen, StatusInProgress, StatusFinished, StatusCancelled}

func (s TournamentStatus) String() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusInProgress:
		return "InProgress"
	case StatusFinished:
		return "Finished"
	case StatusCancelled:
		return "Cancelled"
	}
	return fmt.Sprintf("TournamentStatus(%d)", int(s))
}

func (s TournamentStatus) DisplayName() string {
	switch s {
	case StatusInProgress:
		return "In Progress"
	}
	return s.String()
}

func (s TournamentStatus) Valid() bool {
	return s >= StatusOpen && s <= StatusCancelled
}

// Active reports whether the tournament still shows up in the public listing.
func (s TournamentStatus) Active() bool {
	return s == StatusOpen || s == StatusInProgress
}

func ParseTournamentStatus(s string) (TournamentStatus, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		st := TournamentStatus(n)
		if st.Valid() {
			return st, nil
		}
		return 0, fmt.Errorf("unknown status %q", s)
	}
	for _, st := range Statuses {
		if strings.EqualFold(s, st.String()) || strings.EqualFold(s, st.DisplayName()) {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown status %q", s)
}

func (s TournamentStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *TournamentStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseTournamentStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *TournamentStatus) UnmarshalJSON(b []byte) error {
	return s.UnmarshalText(unquote(b))
}

// unquote lets the enums decode from both `1` and `"LeagueOfLegends"`.
func unquote(b []byte) []byte {
	b = bytes.TrimSpace(b)
	var s string
	if len(b) > 0 && b[0] == '"' && json.Unmarshal(b, &s) == nil {
		return []byte(s)
	}
	return b
}

func (g GameType) Value() (driver.Value, error) { return int64(g), nil }

func (g *GameType) Scan(src any) error {
	n, err := scanInt(src)
	*g = GameType(n)
	return err
}

func (s TournamentStatus) Value() (driver.Value, error) { return int64(s), nil }

func (s *TournamentStatus) Scan(src any) error {
	n, err := scanInt(src)
	*s = TournamentStatus(n)
	return err
}

func scanInt(src any) (int64, error) {
	switch v := src.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	case string:
		return strconv.ParseInt(v, 10, 64)
	case nil:
		return 0, nil
	}
	return 0, fmt.Errorf("cannot scan %T into enum", src)
}
