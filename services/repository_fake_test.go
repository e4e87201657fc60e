package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tournament-registration/models"
	"tournament-registration/repository"
)

// memoryRepo is an in-memory TournamentRepository with the same capacity and
// uniqueness rules as the gorm implementation. The func fields override
// individual methods.
type memoryRepo struct {
	mu           sync.Mutex
	nextID       uint
	tournaments  map[uint]models.Tournament
	participants map[uint][]models.Participant

	addParticipantFn func(ctx context.Context, p *models.Participant) error
	listDueFn        func(ctx context.Context, now time.Time) ([]models.Tournament, error)
	updateStatusFn   func(ctx context.Context, id uint, from, to models.TournamentStatus) (bool, error)
}

var _ repository.TournamentRepository = (*memoryRepo)(nil)

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		tournaments:  map[uint]models.Tournament{},
		participants: map[uint][]models.Participant{},
	}
}

func (r *memoryRepo) Create(_ context.Context, t *models.Tournament) error {
	if err := t.ValidateSchedule(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	t.ID = r.nextID
	r.tournaments[t.ID] = *t
	return nil
}

func (r *memoryRepo) GetByID(_ context.Context, id uint) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, models.ErrTournamentNotFound
	}
	t.Participants = append([]models.Participant(nil), r.participants[id]...)
	t.ParticipantCount = len(t.Participants)
	return &t, nil
}

func (r *memoryRepo) list(keep func(models.Tournament) bool) []models.Tournament {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Tournament
	for _, t := range r.tournaments {
		if keep(t) {
			t.ParticipantCount = len(r.participants[t.ID])
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *memoryRepo) ListActive(context.Context) ([]models.Tournament, error) {
	return r.list(func(t models.Tournament) bool { return t.Status.Active() }), nil
}

func (r *memoryRepo) ListByGame(_ context.Context, game models.GameType) ([]models.Tournament, error) {
	return r.list(func(t models.Tournament) bool { return t.Game == game }), nil
}

func (r *memoryRepo) Search(_ context.Context, f repository.SearchFilter) ([]models.Tournament, error) {
	term := strings.ToLower(f.Term)
	return r.list(func(t models.Tournament) bool {
		if term != "" && !strings.Contains(strings.ToLower(t.Name), term) && !strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
		if f.Game != nil && t.Game != *f.Game {
			return false
		}
		return f.Status == nil || t.Status == *f.Status
	}), nil
}

func (r *memoryRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[id]; !ok {
		return models.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	delete(r.participants, id)
	return nil
}

func (r *memoryRepo) AddParticipant(ctx context.Context, p *models.Participant) error {
	if r.addParticipantFn != nil {
		return r.addParticipantFn(ctx, p)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[p.TournamentID]
	if !ok {
		return models.ErrTournamentNotFound
	}
	current := r.participants[p.TournamentID]
	if len(current) >= t.MaxParticipants {
		return models.ErrTournamentFull
	}
	for _, e := range current {
		if models.FoldKey(e.GameUsername) == models.FoldKey(p.GameUsername) {
			return &models.DuplicateParticipantError{Field: models.DuplicateOnIdentifier, Value: p.GameUsername, ExistingPlayer: e.PlayerName}
		}
		if models.SameName(e.PlayerName, p.PlayerName) {
			return &models.DuplicateParticipantError{Field: models.DuplicateOnName, Value: p.PlayerName}
		}
	}
	r.nextID++
	p.ID = r.nextID
	r.participants[p.TournamentID] = append(current, *p)
	return nil
}

func (r *memoryRepo) RemoveParticipant(_ context.Context, tournamentID uint, playerName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.participants[tournamentID]
	for i, e := range current {
		if models.SameName(e.PlayerName, playerName) {
			r.participants[tournamentID] = append(current[:i:i], current[i+1:]...)
			return nil
		}
	}
	return models.ErrParticipantNotFound
}

func (r *memoryRepo) ListDueForTransition(ctx context.Context, now time.Time) ([]models.Tournament, error) {
	if r.listDueFn != nil {
		return r.listDueFn(ctx, now)
	}
	return r.list(func(t models.Tournament) bool {
		return (t.Status == models.StatusOpen && !now.Before(t.StartDate)) ||
			(t.Status == models.StatusInProgress && !now.Before(t.EndDate))
	}), nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id uint, from, to models.TournamentStatus) (bool, error) {
	if r.updateStatusFn != nil {
		return r.updateStatusFn(ctx, id, from, to)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok || t.Status != from {
		return false, nil
	}
	t.Status = to
	r.tournaments[id] = t
	return true, nil
}

func (r *memoryRepo) ListUnarchivedFinished(context.Context, int) ([]models.Tournament, error) {
	return r.list(func(t models.Tournament) bool {
		return t.Status == models.StatusFinished && t.ArchivedAt == nil
	}), nil
}

func (r *memoryRepo) MarkArchived(_ context.Context, id uint, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.tournaments[id]
	t.ArchivedAt = &at
	r.tournaments[id] = t
	return nil
}

func (r *memoryRepo) count(id uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants[id])
}
