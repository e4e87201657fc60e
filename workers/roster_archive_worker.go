// workers/roster_archive_worker.go
package workers

import (
	"context"
	"fmt"
	"time"

	"tournament-registration/metrics"
	"tournament-registration/models"
	"tournament-registration/repository"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// ArchiveStore persists a JSON document and returns where it can be read.
type ArchiveStore interface {
	PutJSON(ctx context.Context, key string, v any) (string, error)
}

// RosterSnapshot is the document uploaded for each finished tournament.
type RosterSnapshot struct {
	TournamentID uint            `json:"tournament_id"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug"`
	Game         models.GameType `json:"game"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	Prize        float64         `json:"prize"`
	ArchivedAt   time.Time       `json:"archived_at"`
	Participants []RosterEntry   `json:"participants"`
}

type RosterEntry struct {
	PlayerName   string    `json:"player_name"`
	GameUsername string    `json:"game_username"`
	Rank         string    `json:"rank,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
	APIData      string    `json:"api_data,omitempty"`
}

// RosterArchiveWorker uploads the final roster of every finished tournament
// once, then stamps archived_at.
type RosterArchiveWorker struct {
	repo      repository.TournamentRepository
	store     ArchiveStore
	logger    *zap.Logger
	metrics   *metrics.Metrics
	batchSize int
	Clock     func() time.Time
}

func NewRosterArchiveWorker(repo repository.TournamentRepository, store ArchiveStore, logger *zap.Logger, m *metrics.Metrics) *RosterArchiveWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterArchiveWorker{
		repo:      repo,
		store:     store,
		logger:    logger,
		metrics:   m,
		batchSize: 20,
		Clock:     time.Now,
	}
}

// ArchiveFinished processes one batch and returns how many rosters were
// uploaded. A failed upload is logged and retried on the next run.
func (w *RosterArchiveWorker) ArchiveFinished(ctx context.Context) (int, error) {
	pending, err := w.repo.ListUnarchivedFinished(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}

	archived := 0
	for _, t := range pending {
		now := w.Clock()
		key := ObjectKey(t)
		url, err := w.store.PutJSON(ctx, key, snapshot(t, now))
		if err != nil {
			w.logger.Error("❌ failed to upload roster", zap.Uint("tournament_id", t.ID), zap.Error(err))
			continue
		}
		if err := w.repo.MarkArchived(ctx, t.ID, now); err != nil {
			w.logger.Error("❌ failed to mark roster archived", zap.Uint("tournament_id", t.ID), zap.Error(err))
			continue
		}
		archived++
		w.metrics.RosterArchived()
		w.logger.Info("📦 roster archived",
			zap.Uint("tournament_id", t.ID), zap.Int("participants", len(t.Participants)), zap.String("url", url))
	}
	return archived, nil
}

// ObjectKey is stable per tournament so a re-upload overwrites the same object.
func ObjectKey(t models.Tournament) string {
	name := t.Slug
	if name == "" {
		name = slug.Make(t.Name)
	}
	return fmt.Sprintf("rosters/%s/%d-%s.json", slug.Make(t.Game.String()), t.ID, name)
}

func snapshot(t models.Tournament, now time.Time) RosterSnapshot {
	s := RosterSnapshot{
		TournamentID: t.ID,
		Name:         t.Name,
		Slug:         t.Slug,
		Game:         t.Game,
		StartDate:    t.StartDate,
		EndDate:      t.EndDate,
		Prize:        t.Prize,
		ArchivedAt:   now,
		Participants: make([]RosterEntry, 0, len(t.Participants)),
	}
	for _, p := range t.Participants {
		s.Participants = append(s.Participants, RosterEntry{
			PlayerName:   p.PlayerName,
			GameUsername: p.GameUsername,
			Rank:         p.Rank,
			RegisteredAt: p.RegisteredAt,
			APIData:      p.APIData,
		})
	}
	return s
}
