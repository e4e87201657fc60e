package models

import (
	"sort"
	"strings"
)

// Tier is a ranked ladder tier.
type Tier int

const (
	TierUnranked Tier = iota
	TierIron
	TierBronze
	TierSilver
	TierGold
	TierPlatinum
	TierEmerald
	TierDiamond
	TierMaster
	TierGrandmaster
	TierChallenger
)

// UnrankedLabel is rendered whenever a player has no ranked data.
const UnrankedLabel = "Não Ranqueado"

type tierNames struct {
	canonical string // as sent by the ranked API
	english   string
	display   string
}

var tierTable = map[Tier]tierNames{
	TierIron:        {"IRON", "Iron", "Ferro"},
	TierBronze:      {"BRONZE", "Bronze", "Bronze"},
	TierSilver:      {"SILVER", "Silver", "Prata"},
	TierGold:        {"GOLD", "Gold", "Ouro"},
	TierPlatinum:    {"PLATINUM", "Platinum", "Platina"},
	TierEmerald:     {"EMERALD", "Emerald", "Esmeralda"},
	TierDiamond:     {"DIAMOND", "Diamond", "Diamante"},
	TierMaster:      {"MASTER", "Master", "Mestre"},
	TierGrandmaster: {"GRANDMASTER", "Grandmaster", "Grão-Mestre"},
	TierChallenger:  {"CHALLENGER", "Challenger", "Desafiante"},
}

type tierToken struct {
	token string
	tier  Tier
}

// tierTokens holds every recognized spelling, longest first, so that
// "Grandmaster" is never read as "Master".
var tierTokens = func() []tierToken {
	var out []tierToken
	for t, n := range tierTable {
		for _, s := range []string{n.english, n.display} {
			out = append(out, tierToken{token: strings.ToLower(s), tier: t})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].token) != len(out[j].token) {
			return len(out[i].token) > len(out[j].token)
		}
		return out[i].token < out[j].token
	})
	return out
}()

// Label is the localized display name.
func (t Tier) Label() string {
	if n, ok := tierTable[t]; ok {
		return n.display
	}
	return UnrankedLabel
}

func (t Tier) String() string {
	if n, ok := tierTable[t]; ok {
		return n.canonical
	}
	return "UNRANKED"
}

// TierFromAPI maps the ranked API's tier field ("GOLD") to a Tier.
func TierFromAPI(s string) Tier {
	s = strings.ToUpper(strings.TrimSpace(s))
	for t, n := range tierTable {
		if n.canonical == s {
			return t
		}
	}
	return TierUnranked
}

// ParseTier finds the first known tier name inside free text such as
// "Ouro II (40 LP)" or "Gold II". English and display names are both
// recognized since stored ranks may predate the display table.
func ParseTier(rank string) (Tier, bool) {
	lower := strings.ToLower(rank)
	for _, tok := range tierTokens {
		if strings.Contains(lower, tok.token) {
			return tok.tier, true
		}
	}
	return TierUnranked, false
}

// IsUnrankedText reports whether a stored rank string means "no rank".
func IsUnrankedText(rank string) bool {
	r := strings.ToLower(strings.TrimSpace(rank))
	return r == "" || strings.Contains(r, "não") || strings.Contains(r, "unranked")
}
