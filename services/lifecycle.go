package services

import (
	"context"
	"sort"
	"time"

	"tournament-registration/metrics"
	"tournament-registration/models"
	"tournament-registration/repository"

	"go.uber.org/zap"
)

const (
	recentRegistrationsLimit = 5
	startingSoonWindow       = 7 * 24 * time.Hour

	RankBucketUnranked = "Unranked"
	RankBucketOther    = "Other"
)

// DeriveStatus applies the time-based transitions Open -> InProgress ->
// Finished. Cancelled and Finished never change.
func DeriveStatus(t models.Tournament, now time.Time) models.TournamentStatus {
	status := t.Status
	if status == models.StatusOpen && !now.Before(t.StartDate) {
		status = models.StatusInProgress
	}
	if status == models.StatusInProgress && !now.Before(t.EndDate) {
		status = models.StatusFinished
	}
	return status
}

type ParticipantInfo struct {
	ID           uint      `json:"id"`
	PlayerName   string    `json:"player_name"`
	GameUsername string    `json:"game_username"`
	Rank         string    `json:"rank,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

type TournamentStats struct {
	TournamentID        uint                    `json:"tournament_id"`
	TournamentName      string                  `json:"tournament_name"`
	Game                models.GameType         `json:"game"`
	Status              models.TournamentStatus `json:"status"`
	TotalParticipants   int                     `json:"total_participants"`
	MaxParticipants     int                     `json:"max_participants"`
	FillRate            float64                 `json:"fill_rate"` // percent of slots taken
	RankDistribution    map[string]int          `json:"rank_distribution"`
	RecentRegistrations []ParticipantInfo       `json:"recent_registrations"`
	DaysUntilStart      int                     `json:"days_until_start"`
	IsStartingSoon      bool                    `json:"is_starting_soon"`
	IsFull              bool                    `json:"is_full"`
}

// ComputeStats summarizes a tournament with its participants loaded.
func ComputeStats(t models.Tournament, now time.Time) TournamentStats {
	total := len(t.Participants)
	stats := TournamentStats{
		TournamentID:        t.ID,
		TournamentName:      t.Name,
		Game:                t.Game,
		Status:              DeriveStatus(t, now),
		TotalParticipants:   total,
		MaxParticipants:     t.MaxParticipants,
		RankDistribution:    map[string]int{},
		RecentRegistrations: []ParticipantInfo{},
		IsFull:              total >= t.MaxParticipants,
	}
	if t.MaxParticipants > 0 {
		stats.FillRate = float64(total) / float64(t.MaxParticipants) * 100
	}

	if t.Game == models.GameLeagueOfLegends {
		stats.RankDistribution = RankDistribution(t.Participants)
	}

	recent := append([]models.Participant(nil), t.Participants...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].RegisteredAt.After(recent[j].RegisteredAt)
	})
	if len(recent) > recentRegistrationsLimit {
		recent = recent[:recentRegistrationsLimit]
	}
	for _, p := range recent {
		stats.RecentRegistrations = append(stats.RecentRegistrations, ParticipantInfo{
			ID:           p.ID,
			PlayerName:   p.PlayerName,
			GameUsername: p.GameUsername,
			Rank:         p.Rank,
			RegisteredAt: p.RegisteredAt,
		})
	}

	untilStart := t.StartDate.Sub(now)
	stats.DaysUntilStart = int(untilStart / (24 * time.Hour))
	stats.IsStartingSoon = untilStart <= startingSoonWindow
	return stats
}

// RankDistribution buckets participants by the tier found in their stored
// rank text, keyed by the tier's display label.
func RankDistribution(participants []models.Participant) map[string]int {
	dist := map[string]int{}
	for _, p := range participants {
		dist[rankBucket(p.Rank)]++
	}
	return dist
}

func rankBucket(rank string) string {
	if models.IsUnrankedText(rank) {
		return RankBucketUnranked
	}
	if tier, ok := models.ParseTier(rank); ok {
		return tier.Label()
	}
	return RankBucketOther
}

// LifecycleService persists the transitions DeriveStatus computes.
type LifecycleService struct {
	repo    repository.TournamentRepository
	logger  *zap.Logger
	metrics *metrics.Metrics
	Clock   func() time.Time
}

func NewLifecycleService(repo repository.TournamentRepository, logger *zap.Logger, m *metrics.Metrics) *LifecycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{repo: repo, logger: logger, metrics: m, Clock: time.Now}
}

// Sweep moves every due tournament to its derived status and returns how many
// rows changed.
func (s *LifecycleService) Sweep(ctx context.Context) (int, error) {
	now := s.Clock()
	due, err := s.repo.ListDueForTransition(ctx, now)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, t := range due {
		next := DeriveStatus(t, now)
		if next == t.Status {
			continue
		}
		ok, err := s.repo.UpdateStatus(ctx, t.ID, t.Status, next)
		if err != nil {
			s.logger.Error("❌ failed to update tournament status",
				zap.Uint("tournament_id", t.ID), zap.Stringer("to", next), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		changed++
		s.metrics.StatusTransition(next.String())
		s.logger.Info("✅ tournament status updated",
			zap.Uint("tournament_id", t.ID), zap.String("name", t.Name),
			zap.Stringer("from", t.Status), zap.Stringer("to", next))
	}
	return changed, nil
}
