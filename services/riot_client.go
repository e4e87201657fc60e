// services/riot_client.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tournament-registration/metrics"
	"tournament-registration/models"

	"go.uber.org/zap"
)

// PlayerVerifier resolves a Riot ID into a PlayerProfile.
type PlayerVerifier interface {
	Verify(ctx context.Context, identifier string, game models.GameType, primaryRegion string) (*PlayerProfile, error)
}

// RegionTable maps Riot routing values and platforms to API base URLs.
// It is copied on construction and never mutated.
type RegionTable struct {
	hosts map[string]string
}

func NewRegionTable(hosts map[string]string) RegionTable {
	cp := make(map[string]string, len(hosts))
	for k, v := range hosts {
		cp[strings.ToLower(k)] = strings.TrimRight(v, "/")
	}
	return RegionTable{hosts: cp}
}

func (t RegionTable) BaseURL(region string) (string, bool) {
	u, ok := t.hosts[strings.ToLower(strings.TrimSpace(region))]
	return u, ok
}

type RiotClientOptions struct {
	APIKey          string
	AccountRegion   string
	DefaultRegion   string
	FallbackRegions []string
	HTTPClient      *http.Client
	Logger          *zap.Logger
	Metrics         *metrics.Metrics
}

// RiotClient talks to account-v1, summoner-v4, league-v4 and the Valorant
// active-shard endpoint. It never retries.
type RiotClient struct {
	apiKey          string
	regions         RegionTable
	accountRegion   string
	defaultRegion   string
	fallbackRegions []string
	httpClient      *http.Client
	logger          *zap.Logger
	metrics         *metrics.Metrics
}

func NewRiotClient(regions RegionTable, opts RiotClientOptions) *RiotClient {
	c := &RiotClient{
		apiKey:          opts.APIKey,
		regions:         regions,
		accountRegion:   opts.AccountRegion,
		defaultRegion:   opts.DefaultRegion,
		fallbackRegions: append([]string(nil), opts.FallbackRegions...),
		httpClient:      opts.HTTPClient,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
	}
	if c.accountRegion == "" {
		c.accountRegion = "americas"
	}
	if c.defaultRegion == "" {
		c.defaultRegion = "br1"
	}
	if c.httpClient == nil {
		c.httpClient = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// ParseRiotID splits "name#tag" on the first '#'.
func ParseRiotID(identifier string) (name, tag string, err error) {
	name, tag, found := strings.Cut(identifier, "#")
	name, tag = strings.TrimSpace(name), strings.TrimSpace(tag)
	if !found || name == "" || tag == "" {
		return "", "", ErrInvalidRiotID
	}
	return name, tag, nil
}

func (c *RiotClient) Verify(ctx context.Context, identifier string, game models.GameType, primaryRegion string) (*PlayerProfile, error) {
	name, tag, err := ParseRiotID(identifier)
	if err != nil {
		return nil, err
	}

	account, err := c.account(ctx, name, tag)
	if err != nil {
		return nil, err
	}

	profile := &PlayerProfile{Game: game, Account: *account}
	switch game {
	case models.GameValorant:
		c.attachShard(ctx, profile)
	default:
		c.attachLeague(ctx, profile, primaryRegion)
	}
	return profile, nil
}

func (c *RiotClient) account(ctx context.Context, name, tag string) (*RiotAccount, error) {
	base, err := c.base(c.accountRegion)
	if err != nil {
		return nil, err
	}

	var account RiotAccount
	if err := c.get(ctx, "account", base, &account, "riot/account/v1/accounts/by-riot-id", name, tag); err != nil {
		return nil, err
	}
	if account.PUUID == "" {
		return nil, &VerificationError{Kind: KindRemote, Err: errors.New("account response missing puuid")}
	}
	if account.GameName == "" {
		account.GameName, account.TagLine = name, tag
	}
	return &account, nil
}

// attachLeague finds the summoner on the primary platform or the first
// fallback that has it, then loads every ranked queue. Failures only leave
// fields absent.
func (c *RiotClient) attachLeague(ctx context.Context, p *PlayerProfile, primaryRegion string) {
	if primaryRegion == "" {
		primaryRegion = c.defaultRegion
	}

	for _, region := range c.searchOrder(primaryRegion) {
		base, ok := c.regions.BaseURL(region)
		if !ok {
			c.logger.Warn("⚠️ skipping unknown riot region", zap.String("region", region))
			continue
		}

		var summ struct {
			PUUID         string `json:"puuid"`
			ProfileIconID int    `json:"profileIconId"`
			SummonerLevel int64  `json:"summonerLevel"`
		}
		if err := c.get(ctx, "summoner", base, &summ, "lol/summoner/v4/summoners/by-puuid", p.Account.PUUID); err != nil {
			c.logger.Debug("summoner not found in region",
				zap.String("riot_id", p.RiotID()), zap.String("region", region), zap.Error(err))
			continue
		}
		p.summoner = &Summoner{Level: summ.SummonerLevel, ProfileIconID: summ.ProfileIconID, Region: region}

		var raw []struct {
			QueueType    string `json:"queueType"`
			Tier         string `json:"tier"`
			Rank         string `json:"rank"`
			LeaguePoints int    `json:"leaguePoints"`
			Wins         int    `json:"wins"`
			Losses       int    `json:"losses"`
			HotStreak    bool   `json:"hotStreak"`
			Veteran      bool   `json:"veteran"`
			FreshBlood   bool   `json:"freshBlood"`
			Inactive     bool   `json:"inactive"`
		}
		if err := c.get(ctx, "league", base, &raw, "lol/league/v4/entries/by-puuid", p.Account.PUUID); err != nil {
			c.logger.Warn("⚠️ ranked entries unavailable, treating player as unranked",
				zap.String("riot_id", p.RiotID()), zap.String("region", region), zap.Error(err))
			return
		}
		for _, e := range raw {
			p.entries = append(p.entries, RankedEntry{
				QueueType:    e.QueueType,
				Tier:         models.TierFromAPI(e.Tier),
				Division:     e.Rank,
				LeaguePoints: e.LeaguePoints,
				Wins:         e.Wins,
				Losses:       e.Losses,
				HotStreak:    e.HotStreak,
				Veteran:      e.Veteran,
				FreshBlood:   e.FreshBlood,
				Inactive:     e.Inactive,
			})
		}
		return
	}

	c.logger.Info("summoner not found in any region, verified without ranked data",
		zap.String("riot_id", p.RiotID()))
}

func (c *RiotClient) attachShard(ctx context.Context, p *PlayerProfile) {
	base, err := c.base(c.accountRegion)
	if err != nil {
		return
	}
	var shard struct {
		ActiveShard string `json:"activeShard"`
	}
	if err := c.get(ctx, "active_shard", base, &shard, "riot/account/v1/active-shards/by-game/val/by-puuid", p.Account.PUUID); err != nil {
		c.logger.Warn("⚠️ active shard unavailable",
			zap.String("riot_id", p.RiotID()), zap.Error(err))
		return
	}
	if shard.ActiveShard != "" {
		p.activeShard = &shard.ActiveShard
	}
}

func (c *RiotClient) searchOrder(primary string) []string {
	order := []string{primary}
	for _, r := range c.fallbackRegions {
		if !strings.EqualFold(r, primary) {
			order = append(order, r)
		}
	}
	return order
}

func (c *RiotClient) base(region string) (string, error) {
	base, ok := c.regions.BaseURL(region)
	if !ok {
		return "", &VerificationError{Kind: KindRemote, Err: fmt.Errorf("no host configured for region %q", region)}
	}
	return base, nil
}

// get issues a GET against base joined with the escaped path segments and
// decodes the JSON body into out.
func (c *RiotClient) get(ctx context.Context, endpoint, base string, out any, segments ...string) error {
	u, err := url.Parse(base)
	if err != nil {
		return &VerificationError{Kind: KindRemote, Err: fmt.Errorf("failed to parse base URL: %w", err)}
	}
	u = u.JoinPath(segments...)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &VerificationError{Kind: KindRemote, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("X-Riot-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RiotRequest(endpoint, 0)
		return &VerificationError{Kind: KindRemote, Err: fmt.Errorf("failed to call riot api: %w", err)}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()
	c.metrics.RiotRequest(endpoint, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		verr := classifyStatus(resp.StatusCode)
		verr.Err = fmt.Errorf("riot %s returned %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
		return verr
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &VerificationError{Kind: KindRemote, Err: fmt.Errorf("failed to decode %s response: %w", endpoint, err)}
	}
	return nil
}
