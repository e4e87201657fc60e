package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"tournament-registration/models"
	"tournament-registration/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var archiveNow = time.Date(2025, 6, 20, 3, 0, 0, 0, time.UTC)

// stubRepo implements only what the worker touches.
type stubRepo struct {
	repository.TournamentRepository

	pending  []models.Tournament
	listErr  error
	marked   map[uint]time.Time
	markErr  error
	gotLimit int
}

func (r *stubRepo) ListUnarchivedFinished(_ context.Context, limit int) ([]models.Tournament, error) {
	r.gotLimit = limit
	return r.pending, r.listErr
}

func (r *stubRepo) MarkArchived(_ context.Context, id uint, at time.Time) error {
	if r.markErr != nil {
		return r.markErr
	}
	r.marked[id] = at
	return nil
}

type storeFunc func(ctx context.Context, key string, v any) (string, error)

func (f storeFunc) PutJSON(ctx context.Context, key string, v any) (string, error) {
	return f(ctx, key, v)
}

func finished(id uint, name string) models.Tournament {
	return models.Tournament{
		ID:     id,
		Name:   name,
		Slug:   "",
		Game:   models.GameLeagueOfLegends,
		Status: models.StatusFinished,
		Prize:  1000,
		Participants: []models.Participant{
			{PlayerName: "Ana", GameUsername: "Ana#BR1", Rank: "Ouro II (40 LP)", APIData: "Level: 1 | WR: 0.0% | LP: 40"},
		},
	}
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name string
		t    models.Tournament
		want string
	}{
		{"uses stored slug", models.Tournament{ID: 3, Slug: "copa-2025", Name: "ignored", Game: models.GameValorant}, "rosters/valorant/3-copa-2025.json"},
		{"derives slug from name", models.Tournament{ID: 7, Name: "Campeonato LoL 2025", Game: models.GameLeagueOfLegends}, "rosters/leagueoflegends/7-campeonato-lol-2025.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey(tt.t))
		})
	}
}

func TestArchiveFinished(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads and marks each roster", func(t *testing.T) {
		repo := &stubRepo{pending: []models.Tournament{finished(1, "Copa A"), finished(2, "Copa B")}, marked: map[uint]time.Time{}}
		uploads := map[string]RosterSnapshot{}
		store := storeFunc(func(_ context.Context, key string, v any) (string, error) {
			uploads[key] = v.(RosterSnapshot)
			return "https://cdn.example.com/" + key, nil
		})
		w := NewRosterArchiveWorker(repo, store, nil, nil)
		w.Clock = func() time.Time { return archiveNow }

		n, err := w.ArchiveFinished(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, 20, repo.gotLimit)
		assert.Equal(t, map[uint]time.Time{1: archiveNow, 2: archiveNow}, repo.marked)

		snap, ok := uploads["rosters/leagueoflegends/1-copa-a.json"]
		require.True(t, ok)
		assert.Equal(t, "Copa A", snap.Name)
		assert.Equal(t, archiveNow, snap.ArchivedAt)
		require.Len(t, snap.Participants, 1)
		assert.Equal(t, "Ana#BR1", snap.Participants[0].GameUsername)
	})

	t.Run("failed upload is skipped and left unmarked", func(t *testing.T) {
		repo := &stubRepo{pending: []models.Tournament{finished(1, "Copa A"), finished(2, "Copa B")}, marked: map[uint]time.Time{}}
		store := storeFunc(func(_ context.Context, key string, _ any) (string, error) {
			if key == "rosters/leagueoflegends/1-copa-a.json" {
				return "", errors.New("503 slow down")
			}
			return key, nil
		})
		w := NewRosterArchiveWorker(repo, store, nil, nil)

		n, err := w.ArchiveFinished(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.NotContains(t, repo.marked, uint(1))
		assert.Contains(t, repo.marked, uint(2))
	})

	t.Run("mark failure is not counted", func(t *testing.T) {
		repo := &stubRepo{pending: []models.Tournament{finished(1, "Copa A")}, markErr: errors.New("db down")}
		store := storeFunc(func(_ context.Context, key string, _ any) (string, error) { return key, nil })

		n, err := NewRosterArchiveWorker(repo, store, nil, nil).ArchiveFinished(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("listing error is returned", func(t *testing.T) {
		repo := &stubRepo{listErr: errors.New("db down")}
		_, err := NewRosterArchiveWorker(repo, nil, nil, nil).ArchiveFinished(ctx)
		assert.Error(t, err)
	})
}
