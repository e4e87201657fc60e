package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		rank   string
		want   Tier
		wantOK bool
	}{
		{"Gold II (40 LP)", TierGold, true},
		{"Ouro II (40 LP)", TierGold, true},
		{"Diamante I (10 LP)", TierDiamond, true},
		{"Grão-Mestre I (300 LP)", TierGrandmaster, true},
		{"GRANDMASTER I", TierGrandmaster, true},
		{"Mestre I (12 LP)", TierMaster, true},
		{"Esmeralda IV (0 LP)", TierEmerald, true},
		{"platinum iv", TierPlatinum, true},
		{"Wood V", TierUnranked, false},
		{"", TierUnranked, false},
	}
	for _, tt := range tests {
		t.Run(tt.rank, func(t *testing.T) {
			got, ok := ParseTier(tt.rank)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTierFromAPI(t *testing.T) {
	assert.Equal(t, TierChallenger, TierFromAPI("CHALLENGER"))
	assert.Equal(t, "Desafiante", TierFromAPI("challenger").Label())
	assert.Equal(t, TierUnranked, TierFromAPI(""))
	assert.Equal(t, UnrankedLabel, TierUnranked.Label())
}

func TestIsUnrankedText(t *testing.T) {
	assert.True(t, IsUnrankedText(""))
	assert.True(t, IsUnrankedText("Não Ranqueado"))
	assert.True(t, IsUnrankedText("Unranked"))
	assert.False(t, IsUnrankedText("Ouro II (40 LP)"))
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, FoldKey("Alice"), FoldKey(" alice "))
	assert.True(t, SameName("Éowyn", "éOWYN"))
	assert.False(t, SameName("Ana", "Bea"))
}
