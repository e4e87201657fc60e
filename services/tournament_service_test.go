package services

import (
	"context"
	"testing"
	"time"

	"tournament-registration/models"
	"tournament-registration/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTournamentFixture(t *testing.T) (*TournamentService, *memoryRepo) {
	t.Helper()
	repo := newMemoryRepo()
	svc := NewTournamentService(repo, nil)
	svc.Clock = func() time.Time { return fixedNow }
	return svc, repo
}

func createAt(t *testing.T, svc *TournamentService, name string, game models.GameType, start, end time.Time) *models.Tournament {
	t.Helper()
	tour, err := svc.Create(context.Background(), CreateTournamentInput{
		Name: name, Game: game, StartDate: start, EndDate: end, MaxParticipants: 8,
	})
	require.NoError(t, err)
	return tour
}

func TestTournamentCreate(t *testing.T) {
	svc, _ := newTournamentFixture(t)

	tour, err := svc.Create(context.Background(), CreateTournamentInput{
		Name:            "  Copa Verão ",
		Description:     " aberta ",
		Game:            models.GameValorant,
		StartDate:       fixedNow.Add(time.Hour),
		EndDate:         fixedNow.Add(2 * time.Hour),
		MaxParticipants: 10,
		Prize:           250.5,
	})
	require.NoError(t, err)

	assert.NotZero(t, tour.ID)
	assert.Equal(t, "Copa Verão", tour.Name)
	assert.Equal(t, "aberta", tour.Description)
	assert.Equal(t, models.StatusOpen, tour.Status)
	assert.Equal(t, models.CreatedByOrganizer, tour.CreatedBy)
	assert.Equal(t, fixedNow, tour.CreatedAt)

	_, err = svc.Create(context.Background(), CreateTournamentInput{
		Name: "Backwards", Game: models.GameValorant, MaxParticipants: 2,
		StartDate: fixedNow.Add(2 * time.Hour), EndDate: fixedNow.Add(time.Hour),
	})
	assert.ErrorIs(t, err, models.ErrInvalidSchedule)
}

func TestTournamentReadsDeriveStatus(t *testing.T) {
	svc, _ := newTournamentFixture(t)
	ctx := context.Background()

	upcoming := createAt(t, svc, "Upcoming", models.GameLeagueOfLegends, fixedNow.Add(time.Hour), fixedNow.Add(2*time.Hour))
	running := createAt(t, svc, "Running", models.GameLeagueOfLegends, fixedNow.Add(-time.Hour), fixedNow.Add(time.Hour))
	over := createAt(t, svc, "Over", models.GameValorant, fixedNow.Add(-2*time.Hour), fixedNow.Add(-time.Hour))

	t.Run("get", func(t *testing.T) {
		got, err := svc.Get(ctx, running.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusInProgress, got.Status)

		_, err = svc.Get(ctx, 999)
		assert.ErrorIs(t, err, models.ErrTournamentNotFound)
	})

	t.Run("list active drops rows that already finished", func(t *testing.T) {
		list, err := svc.ListActive(ctx)
		require.NoError(t, err)
		var ids []uint
		for _, tour := range list {
			ids = append(ids, tour.ID)
		}
		assert.ElementsMatch(t, []uint{upcoming.ID, running.ID}, ids)
	})

	t.Run("list by game", func(t *testing.T) {
		list, err := svc.ListByGame(ctx, models.GameValorant)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, over.ID, list[0].ID)
		assert.Equal(t, models.StatusFinished, list[0].Status)
	})

	t.Run("search filters on derived status", func(t *testing.T) {
		status := models.StatusInProgress
		list, err := svc.Search(ctx, repository.SearchFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, running.ID, list[0].ID)
	})

	t.Run("search by term and game", func(t *testing.T) {
		game := models.GameLeagueOfLegends
		list, err := svc.Search(ctx, repository.SearchFilter{Term: "up", Game: &game})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, upcoming.ID, list[0].ID)
	})
}

func TestTournamentDeleteAndStats(t *testing.T) {
	svc, repo := newTournamentFixture(t)
	ctx := context.Background()
	tour := createAt(t, svc, "Copa", models.GameLeagueOfLegends, fixedNow.Add(72*time.Hour), fixedNow.Add(96*time.Hour))
	require.NoError(t, repo.AddParticipant(ctx, &models.Participant{
		TournamentID: tour.ID, PlayerName: "Ana", GameUsername: "Ana#BR1", Rank: "Ouro II (40 LP)", RegisteredAt: fixedNow,
	}))

	stats, err := svc.Stats(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalParticipants)
	assert.Equal(t, 3, stats.DaysUntilStart)
	assert.Equal(t, map[string]int{"Ouro": 1}, stats.RankDistribution)

	require.NoError(t, svc.Delete(ctx, tour.ID))
	assert.ErrorIs(t, svc.Delete(ctx, tour.ID), models.ErrTournamentNotFound)
	_, err = svc.Stats(ctx, tour.ID)
	assert.ErrorIs(t, err, models.ErrTournamentNotFound)
}
