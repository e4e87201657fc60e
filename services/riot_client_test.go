package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"tournament-registration/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRiot serves every region under its own path prefix, e.g. /br1/lol/...
type fakeRiot struct {
	t        *testing.T
	srv      *httptest.Server
	calls    atomic.Int32
	mu       sync.Mutex
	visited  []string
	account  func(w http.ResponseWriter, name, tag string)
	summoner func(w http.ResponseWriter, region string)
	league   func(w http.ResponseWriter, region string)
	shard    func(w http.ResponseWriter)
}

func newFakeRiot(t *testing.T) *fakeRiot {
	f := &fakeRiot{t: t}
	f.account = func(w http.ResponseWriter, name, tag string) {
		writeJSON(w, map[string]string{"puuid": "puuid-" + name, "gameName": name, "tagLine": tag})
	}
	f.summoner = func(w http.ResponseWriter, region string) { w.WriteHeader(http.StatusNotFound) }
	f.league = func(w http.ResponseWriter, region string) { writeJSON(w, []any{}) }
	f.shard = func(w http.ResponseWriter) { writeJSON(w, map[string]string{"activeShard": "na"}) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /americas/riot/account/v1/accounts/by-riot-id/{name}/{tag}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.account(w, r.PathValue("name"), r.PathValue("tag"))
	})
	mux.HandleFunc("GET /americas/riot/account/v1/active-shards/by-game/val/by-puuid/{puuid}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.shard(w)
	})
	mux.HandleFunc("GET /{region}/lol/summoner/v4/summoners/by-puuid/{puuid}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.summoner(w, r.PathValue("region"))
	})
	mux.HandleFunc("GET /{region}/lol/league/v4/entries/by-puuid/{puuid}", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		f.league(w, r.PathValue("region"))
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeRiot) record(r *http.Request) {
	f.calls.Add(1)
	assert.Equal(f.t, "test-key", r.Header.Get("X-Riot-Token"))
	f.mu.Lock()
	f.visited = append(f.visited, r.URL.Path)
	f.mu.Unlock()
}

func (f *fakeRiot) client() *RiotClient {
	hosts := map[string]string{}
	for _, r := range []string{"americas", "br1", "na1", "lan1", "las1"} {
		hosts[r] = f.srv.URL + "/" + r
	}
	return NewRiotClient(NewRegionTable(hosts), RiotClientOptions{
		APIKey:          "test-key",
		AccountRegion:   "americas",
		DefaultRegion:   "br1",
		FallbackRegions: []string{"na1", "lan1", "las1"},
		HTTPClient:      f.srv.Client(),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestVerifyRejectsMalformedRiotID(t *testing.T) {
	riot := newFakeRiot(t)
	client := riot.client()

	for _, id := range []string{"", "NoHash", "#BR1", "Player#", "  #  "} {
		t.Run(id, func(t *testing.T) {
			_, err := client.Verify(context.Background(), id, models.GameLeagueOfLegends, "br1")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRiotID)
		})
	}
	assert.Equal(t, int32(0), riot.calls.Load(), "no request may be sent for a malformed id")
}

func TestVerifyAccountStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrAccountNotFound},
		{http.StatusUnauthorized, ErrInvalidAPIKey},
		{http.StatusForbidden, ErrAPIKeyForbidden},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrProviderUnavailable},
		{http.StatusServiceUnavailable, ErrProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			riot := newFakeRiot(t)
			riot.account = func(w http.ResponseWriter, _, _ string) { w.WriteHeader(tt.status) }

			_, err := riot.client().Verify(context.Background(), "Ana#BR1", models.GameLeagueOfLegends, "br1")

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			var verr *VerificationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.status, verr.StatusCode)
			assert.NotEmpty(t, verr.Error())
			assert.Equal(t, int32(1), riot.calls.Load(), "rate limits and errors are never retried")
		})
	}
}

func TestVerifyMissingPUUIDIsRemoteError(t *testing.T) {
	riot := newFakeRiot(t)
	riot.account = func(w http.ResponseWriter, _, _ string) { writeJSON(w, map[string]string{}) }

	_, err := riot.client().Verify(context.Background(), "Ana#BR1", models.GameLeagueOfLegends, "br1")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestVerifyLeagueOfLegendsPrimaryRegion(t *testing.T) {
	riot := newFakeRiot(t)
	riot.summoner = func(w http.ResponseWriter, region string) {
		writeJSON(w, map[string]any{"puuid": "puuid-Ana", "summonerLevel": 231, "profileIconId": 7})
	}
	riot.league = func(w http.ResponseWriter, region string) {
		writeJSON(w, []map[string]any{
			{"queueType": QueueSolo, "tier": "GOLD", "rank": "II", "leaguePoints": 40, "wins": 7, "losses": 3, "hotStreak": true},
			{"queueType": QueueFlex, "tier": "DIAMOND", "rank": "I", "leaguePoints": 10, "wins": 1, "losses": 1, "veteran": true},
		})
	}

	p, err := riot.client().Verify(context.Background(), "Ana#BR1", models.GameLeagueOfLegends, "br1")
	require.NoError(t, err)

	assert.Equal(t, "Ana#BR1", p.RiotID())
	summ, ok := p.Summoner()
	require.True(t, ok)
	assert.Equal(t, int64(231), summ.Level)
	assert.Equal(t, "br1", summ.Region)

	solo, ok := p.SoloQueue()
	require.True(t, ok)
	assert.Equal(t, "Ouro II (40 LP)", solo.FormattedRank())
	assert.Equal(t, 70.0, solo.WinRate())
	assert.Equal(t, []string{"Hot Streak"}, solo.Badges())

	flex, ok := p.FlexQueue()
	require.True(t, ok)
	assert.Equal(t, "Diamante I (10 LP)", flex.FormattedRank())
	assert.Len(t, p.RankedEntries(), 2)

	assert.Equal(t, "Level: 231 | WR: 70.0% | LP: 40", p.APIData())
}

func TestVerifyFallsBackThroughRegions(t *testing.T) {
	riot := newFakeRiot(t)
	riot.summoner = func(w http.ResponseWriter, region string) {
		if region != "lan1" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, map[string]any{"puuid": "puuid-Ana", "summonerLevel": 12})
	}

	p, err := riot.client().Verify(context.Background(), "Ana#LAN", models.GameLeagueOfLegends, "br1")
	require.NoError(t, err)

	summ, ok := p.Summoner()
	require.True(t, ok)
	assert.Equal(t, "lan1", summ.Region)
	assert.Equal(t, []string{
		"/americas/riot/account/v1/accounts/by-riot-id/Ana/LAN",
		"/br1/lol/summoner/v4/summoners/by-puuid/puuid-Ana",
		"/na1/lol/summoner/v4/summoners/by-puuid/puuid-Ana",
		"/lan1/lol/summoner/v4/summoners/by-puuid/puuid-Ana",
		"/lan1/lol/league/v4/entries/by-puuid/puuid-Ana",
	}, riot.visited, "las1 must not be tried after lan1 succeeds")
}

func TestVerifyWithoutSummonerIsVerifiedButUnranked(t *testing.T) {
	riot := newFakeRiot(t)

	p, err := riot.client().Verify(context.Background(), "Ana#BR1", models.GameLeagueOfLegends, "br1")
	require.NoError(t, err)

	_, ok := p.Summoner()
	assert.False(t, ok)
	_, ok = p.SoloQueue()
	assert.False(t, ok)
	assert.Equal(t, models.UnrankedLabel, p.Summary().Rank)
	assert.Equal(t, int32(5), riot.calls.Load(), "account + four summoner regions")
}

func TestVerifyLeagueFailureDegradesToUnranked(t *testing.T) {
	riot := newFakeRiot(t)
	riot.summoner = func(w http.ResponseWriter, region string) {
		writeJSON(w, map[string]any{"puuid": "puuid-Ana", "summonerLevel": 30})
	}
	riot.league = func(w http.ResponseWriter, region string) { w.WriteHeader(http.StatusTooManyRequests) }

	p, err := riot.client().Verify(context.Background(), "Ana#BR1", models.GameLeagueOfLegends, "")
	require.NoError(t, err)

	_, ok := p.Summoner()
	assert.True(t, ok)
	assert.Empty(t, p.RankedEntries())
	assert.Equal(t, models.UnrankedLabel, p.Summary().Rank)
}

func TestVerifyValorant(t *testing.T) {
	t.Run("shard found", func(t *testing.T) {
		riot := newFakeRiot(t)

		p, err := riot.client().Verify(context.Background(), "Bea#VAL", models.GameValorant, "br1")
		require.NoError(t, err)

		shard, ok := p.ActiveShard()
		require.True(t, ok)
		assert.Equal(t, "na", shard)
		assert.Equal(t, "Shard: na", p.APIData())
		assert.Empty(t, p.Summary().Rank)
	})

	t.Run("shard lookup fails", func(t *testing.T) {
		riot := newFakeRiot(t)
		riot.shard = func(w http.ResponseWriter) { w.WriteHeader(http.StatusInternalServerError) }

		p, err := riot.client().Verify(context.Background(), "Bea#VAL", models.GameValorant, "br1")
		require.NoError(t, err)

		_, ok := p.ActiveShard()
		assert.False(t, ok)
		assert.Equal(t, "Shard: Unknown", p.APIData())
	})
}

func TestParseRiotIDSplitsOnFirstHash(t *testing.T) {
	name, tag, err := ParseRiotID(" Faker # KR1 ")
	require.NoError(t, err)
	assert.Equal(t, "Faker", name)
	assert.Equal(t, "KR1", tag)

	name, tag, err = ParseRiotID("a#b#c")
	require.NoError(t, err)
	assert.Equal(t, "a", name)
	assert.Equal(t, "b#c", tag)
}
