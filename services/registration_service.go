package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"tournament-registration/metrics"
	"tournament-registration/models"
	"tournament-registration/repository"

	"go.uber.org/zap"
)

const apiDataMaxLen = 500

type JoinRequest struct {
	TournamentID uint
	PlayerName   string
	GameUsername string
}

// VerificationFailedError wraps the provider's classified reason for
// rejecting a join.
type VerificationFailedError struct {
	Reason error
}

func (e *VerificationFailedError) Error() string { return e.Reason.Error() }
func (e *VerificationFailedError) Unwrap() error { return e.Reason }

// RegistrationService decides whether a player may join a tournament.
type RegistrationService struct {
	repo     repository.TournamentRepository
	verifier PlayerVerifier
	region   string
	logger   *zap.Logger
	metrics  *metrics.Metrics
	Clock    func() time.Time
}

func NewRegistrationService(repo repository.TournamentRepository, verifier PlayerVerifier, region string, logger *zap.Logger, m *metrics.Metrics) *RegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		repo:     repo,
		verifier: verifier,
		region:   region,
		logger:   logger,
		metrics:  m,
		Clock:    time.Now,
	}
}

// Join registers a player. Capacity is checked before the Riot lookup to fail
// fast and again atomically by the repository on insert.
func (s *RegistrationService) Join(ctx context.Context, req JoinRequest) (*models.Participant, error) {
	p, err := s.join(ctx, req)
	s.metrics.Registration(joinResult(err))
	if err != nil {
		s.logger.Info("join rejected",
			zap.Uint("tournament_id", req.TournamentID),
			zap.String("player_name", req.PlayerName),
			zap.String("reason", err.Error()))
		return nil, err
	}
	s.logger.Info("✅ player joined tournament",
		zap.Uint("tournament_id", req.TournamentID),
		zap.Uint("participant_id", p.ID),
		zap.String("player_name", p.PlayerName),
		zap.String("riot_id", p.GameUsername))
	return p, nil
}

func (s *RegistrationService) join(ctx context.Context, req JoinRequest) (*models.Participant, error) {
	name := strings.TrimSpace(req.PlayerName)
	username := strings.TrimSpace(req.GameUsername)

	t, err := s.repo.GetByID(ctx, req.TournamentID)
	if err != nil {
		return nil, err
	}
	if t.IsFull() {
		return nil, models.ErrTournamentFull
	}

	profile, err := s.verifier.Verify(ctx, username, t.Game, s.region)
	if err != nil {
		return nil, &VerificationFailedError{Reason: err}
	}

	for _, existing := range t.Participants {
		if models.FoldKey(existing.GameUsername) == models.FoldKey(username) {
			return nil, &models.DuplicateParticipantError{
				Field: models.DuplicateOnIdentifier, Value: username, ExistingPlayer: existing.PlayerName,
			}
		}
	}
	for _, existing := range t.Participants {
		if models.SameName(existing.PlayerName, name) {
			return nil, &models.DuplicateParticipantError{Field: models.DuplicateOnName, Value: name}
		}
	}

	p := &models.Participant{
		TournamentID: t.ID,
		PlayerName:   name,
		GameUsername: username,
		Rank:         profile.Summary().Rank,
		UserID:       name,
		APIData:      truncate(profile.APIData(), apiDataMaxLen),
		RegisteredAt: s.Clock(),
	}
	if err := s.repo.AddParticipant(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Leave removes a player from a tournament by display name.
func (s *RegistrationService) Leave(ctx context.Context, tournamentID uint, playerName string) error {
	if err := s.repo.RemoveParticipant(ctx, tournamentID, playerName); err != nil {
		return err
	}
	s.logger.Info("player left tournament",
		zap.Uint("tournament_id", tournamentID), zap.String("player_name", playerName))
	return nil
}

// CheckPlayer verifies a Riot ID without registering anything.
func (s *RegistrationService) CheckPlayer(ctx context.Context, username string, game models.GameType) (PlayerSummary, error) {
	profile, err := s.verifier.Verify(ctx, strings.TrimSpace(username), game, s.region)
	if err != nil {
		return PlayerSummary{}, err
	}
	summary := profile.Summary()
	if game == models.GameValorant {
		summary.Rank = VerifiedAccountLabel
	}
	return summary, nil
}

type QueueDetails struct {
	Rank    string  `json:"rank"`
	Tier    string  `json:"tier"`
	LP      int     `json:"lp"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"winRate"`
}

// PlayerDetails is the expanded preview. League of Legends fills the summoner
// and queue fields, Valorant the shard fields.
type PlayerDetails struct {
	RiotID       string        `json:"riotId"`
	SummonerName string        `json:"summonerName,omitempty"`
	Level        int64         `json:"level,omitempty"`
	SoloQueue    *QueueDetails `json:"soloQueue,omitempty"`
	FlexQueue    *QueueDetails `json:"flexQueue,omitempty"`
	Badges       []string      `json:"badges,omitempty"`
	GameName     string        `json:"gameName,omitempty"`
	TagLine      string        `json:"tagLine,omitempty"`
	ActiveShard  string        `json:"activeShard,omitempty"`
	Verified     bool          `json:"verified"`
}

func (s *RegistrationService) DetailedPlayerInfo(ctx context.Context, username string, game models.GameType) (*PlayerDetails, error) {
	profile, err := s.verifier.Verify(ctx, strings.TrimSpace(username), game, s.region)
	if err != nil {
		return nil, err
	}

	d := &PlayerDetails{RiotID: profile.RiotID(), Verified: true}
	if game == models.GameValorant {
		d.GameName = profile.Account.GameName
		d.TagLine = profile.Account.TagLine
		d.ActiveShard = "Unknown"
		if shard, ok := profile.ActiveShard(); ok {
			d.ActiveShard = shard
		}
		return d, nil
	}

	d.SummonerName = profile.RiotID()
	if summ, ok := profile.Summoner(); ok {
		d.Level = summ.Level
	}
	solo, ok := profile.SoloQueue()
	d.SoloQueue = queueDetails(solo, ok)
	flex, ok := profile.FlexQueue()
	d.FlexQueue = queueDetails(flex, ok)
	d.Badges = solo.Badges()
	return d, nil
}

func queueDetails(e RankedEntry, ok bool) *QueueDetails {
	if !ok {
		return &QueueDetails{Rank: models.UnrankedLabel, Tier: models.UnrankedLabel}
	}
	return &QueueDetails{
		Rank:    e.FormattedRank(),
		Tier:    e.Tier.Label(),
		LP:      e.LeaguePoints,
		Wins:    e.Wins,
		Losses:  e.Losses,
		WinRate: e.WinRate(),
	}
}

func joinResult(err error) string {
	var verr *VerificationFailedError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, models.ErrTournamentNotFound):
		return "not_found"
	case errors.Is(err, models.ErrTournamentFull):
		return "full"
	case errors.As(err, &verr):
		return "verification_failed"
	case errors.Is(err, models.ErrDuplicateIdentifier):
		return "duplicate_identifier"
	case errors.Is(err, models.ErrDuplicateName):
		return "duplicate_name"
	}
	return "error"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
