package services

import (
	"encoding/json"
	"fmt"
	"math"

	"tournament-registration/models"
)

const (
	QueueSolo = "RANKED_SOLO_5x5"
	QueueFlex = "RANKED_FLEX_SR"
)

// RiotAccount is the account-v1 identity behind a Riot ID.
type RiotAccount struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

func (a RiotAccount) RiotID() string {
	return a.GameName + "#" + a.TagLine
}

// Summoner is the per-platform League of Legends record.
type Summoner struct {
	Level         int64  `json:"level"`
	ProfileIconID int    `json:"profile_icon_id"`
	Region        string `json:"region"` // platform where the record was found
}

type RankedEntry struct {
	QueueType    string      `json:"queue_type"`
	Tier         models.Tier `json:"tier"`
	Division     string      `json:"division"`
	LeaguePoints int         `json:"league_points"`
	Wins         int         `json:"wins"`
	Losses       int         `json:"losses"`
	HotStreak    bool        `json:"hot_streak"`
	Veteran      bool        `json:"veteran"`
	FreshBlood   bool        `json:"fresh_blood"`
	Inactive     bool        `json:"inactive"`
}

// WinRate is a percentage rounded to one decimal, 0 with no games played.
func (e RankedEntry) WinRate() float64 {
	total := e.Wins + e.Losses
	if total == 0 {
		return 0
	}
	return math.Round(float64(e.Wins)/float64(total)*1000) / 10
}

func (e RankedEntry) FormattedRank() string {
	if e.Tier == models.TierUnranked {
		return models.UnrankedLabel
	}
	if e.Division == "" {
		return fmt.Sprintf("%s (%d LP)", e.Tier.Label(), e.LeaguePoints)
	}
	return fmt.Sprintf("%s %s (%d LP)", e.Tier.Label(), e.Division, e.LeaguePoints)
}

func (e RankedEntry) Badges() []string {
	badges := []string{}
	if e.HotStreak {
		badges = append(badges, "Hot Streak")
	}
	if e.Veteran {
		badges = append(badges, "Veteran")
	}
	if e.FreshBlood {
		badges = append(badges, "Fresh Blood")
	}
	return badges
}

// PlayerProfile is the normalized result of a successful verification.
// Summoner, ranked entries and the active shard may each be absent; use the
// comma-ok accessors.
type PlayerProfile struct {
	Game    models.GameType
	Account RiotAccount

	summoner    *Summoner
	entries     []RankedEntry
	activeShard *string
}

func (p *PlayerProfile) RiotID() string { return p.Account.RiotID() }

func (p *PlayerProfile) Summoner() (Summoner, bool) {
	if p.summoner == nil {
		return Summoner{}, false
	}
	return *p.summoner, true
}

// RankedEntries returns every queue the player is placed in.
func (p *PlayerProfile) RankedEntries() []RankedEntry {
	return append([]RankedEntry(nil), p.entries...)
}

func (p *PlayerProfile) Queue(queueType string) (RankedEntry, bool) {
	for _, e := range p.entries {
		if e.QueueType == queueType {
			return e, true
		}
	}
	return RankedEntry{}, false
}

func (p *PlayerProfile) SoloQueue() (RankedEntry, bool) { return p.Queue(QueueSolo) }
func (p *PlayerProfile) FlexQueue() (RankedEntry, bool) { return p.Queue(QueueFlex) }

func (p *PlayerProfile) ActiveShard() (string, bool) {
	if p.activeShard == nil {
		return "", false
	}
	return *p.activeShard, true
}

// VerifiedAccountLabel stands in for a rank in Valorant previews.
const VerifiedAccountLabel = "Conta Encontrada"

// PlayerSummary is the compact view shown in previews and stored on the participant.
type PlayerSummary struct {
	Rank    string  `json:"rank"`
	Level   int64   `json:"level"`
	WinRate float64 `json:"winRate"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	LP      int     `json:"-"`
}

func (p *PlayerProfile) Summary() PlayerSummary {
	var s PlayerSummary
	if summ, ok := p.Summoner(); ok {
		s.Level = summ.Level
	}
	if p.Game != models.GameLeagueOfLegends {
		return s
	}
	solo, ok := p.SoloQueue()
	if !ok {
		s.Rank = models.UnrankedLabel
		return s
	}
	s.Rank = solo.FormattedRank()
	s.WinRate = solo.WinRate()
	s.Wins = solo.Wins
	s.Losses = solo.Losses
	s.LP = solo.LeaguePoints
	return s
}

// APIData is the verification metadata persisted alongside a participant.
func (p *PlayerProfile) APIData() string {
	if p.Game == models.GameValorant {
		shard, ok := p.ActiveShard()
		if !ok {
			shard = "Unknown"
		}
		return "Shard: " + shard
	}
	s := p.Summary()
	return fmt.Sprintf("Level: %d | WR: %.1f%% | LP: %d", s.Level, s.WinRate, s.LP)
}

type profileJSON struct {
	Game        models.GameType `json:"game"`
	Account     RiotAccount     `json:"account"`
	Summoner    *Summoner       `json:"summoner,omitempty"`
	Entries     []RankedEntry   `json:"ranked_entries,omitempty"`
	ActiveShard *string         `json:"active_shard,omitempty"`
}

func (p *PlayerProfile) MarshalJSON() ([]byte, error) {
	return json.Marshal(profileJSON{
		Game:        p.Game,
		Account:     p.Account,
		Summoner:    p.summoner,
		Entries:     p.entries,
		ActiveShard: p.activeShard,
	})
}

func (p *PlayerProfile) UnmarshalJSON(b []byte) error {
	var w profileJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*p = PlayerProfile{
		Game:        w.Game,
		Account:     w.Account,
		summoner:    w.Summoner,
		entries:     w.Entries,
		activeShard: w.ActiveShard,
	}
	return nil
}
