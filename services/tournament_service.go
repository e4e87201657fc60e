package services

import (
	"context"
	"strings"
	"time"

	"tournament-registration/models"
	"tournament-registration/repository"

	"go.uber.org/zap"
)

// CreateTournamentInput carries validated organizer input.
type CreateTournamentInput struct {
	Name            string
	Description     string
	Game            models.GameType
	StartDate       time.Time
	EndDate         time.Time
	MaxParticipants int
	Prize           float64
}

// TournamentService serves tournament reads and organizer actions. Every
// tournament it returns carries its time-derived status.
type TournamentService struct {
	repo   repository.TournamentRepository
	logger *zap.Logger
	Clock  func() time.Time
}

func NewTournamentService(repo repository.TournamentRepository, logger *zap.Logger) *TournamentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TournamentService{repo: repo, logger: logger, Clock: time.Now}
}

func (s *TournamentService) Create(ctx context.Context, in CreateTournamentInput) (*models.Tournament, error) {
	t := &models.Tournament{
		Name:            strings.TrimSpace(in.Name),
		Description:     strings.TrimSpace(in.Description),
		Game:            in.Game,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		MaxParticipants: in.MaxParticipants,
		Prize:           in.Prize,
		Status:          models.StatusOpen,
		CreatedBy:       models.CreatedByOrganizer,
		CreatedAt:       s.Clock(),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("✅ tournament created",
		zap.Uint("tournament_id", t.ID), zap.String("name", t.Name), zap.Stringer("game", t.Game))
	return t, nil
}

func (s *TournamentService) Get(ctx context.Context, id uint) (*models.Tournament, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Status = DeriveStatus(*t, s.Clock())
	return t, nil
}

// ListActive returns Open and InProgress tournaments by start date. Rows the
// sweep has not caught up with yet are filtered by their derived status.
func (s *TournamentService) ListActive(ctx context.Context) ([]models.Tournament, error) {
	list, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	now := s.Clock()
	out := make([]models.Tournament, 0, len(list))
	for _, t := range list {
		t.Status = DeriveStatus(t, now)
		if t.Status.Active() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *TournamentService) ListByGame(ctx context.Context, game models.GameType) ([]models.Tournament, error) {
	list, err := s.repo.ListByGame(ctx, game)
	if err != nil {
		return nil, err
	}
	return s.derive(list), nil
}

// Search matches the status filter against the derived status, so it is
// applied here rather than in SQL.
func (s *TournamentService) Search(ctx context.Context, f repository.SearchFilter) ([]models.Tournament, error) {
	status := f.Status
	f.Status = nil
	list, err := s.repo.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	list = s.derive(list)
	if status == nil {
		return list, nil
	}
	out := list[:0]
	for _, t := range list {
		if t.Status == *status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *TournamentService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("🗑️ tournament deleted", zap.Uint("tournament_id", id))
	return nil
}

func (s *TournamentService) Stats(ctx context.Context, id uint) (*TournamentStats, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(*t, s.Clock())
	return &stats, nil
}

func (s *TournamentService) derive(list []models.Tournament) []models.Tournament {
	now := s.Clock()
	for i := range list {
		list[i].Status = DeriveStatus(list[i], now)
	}
	return list
}
