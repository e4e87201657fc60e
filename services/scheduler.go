// services/scheduler.go
package services

import (
	"context"
	"time"

	"tournament-registration/config"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// RosterArchiver uploads rosters of finished tournaments.
type RosterArchiver interface {
	ArchiveFinished(ctx context.Context) (int, error)
}

// Scheduler runs the lifecycle sweep and, when configured, the roster
// archive on fixed intervals. Each job runs in singleton mode.
type Scheduler struct {
	sched  gocron.Scheduler
	logger *zap.Logger
}

// StartScheduler registers the jobs and starts the scheduler. archiver may be nil.
func StartScheduler(cfg config.SchedulerConfig, lifecycle *LifecycleService, archiver RosterArchiver, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	// Every minute by default: persist Open -> InProgress -> Finished
	_, err = sched.NewJob(
		gocron.DurationJob(cfg.StatusSweepInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.StatusSweepInterval)
			defer cancel()
			n, err := lifecycle.Sweep(ctx)
			if err != nil {
				logger.Error("[Scheduler] status sweep failed", zap.Error(err))
				return
			}
			if n > 0 {
				logger.Info("[Scheduler] status sweep", zap.Int("updated", n))
			}
		}),
		gocron.WithName("status-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	if archiver != nil {
		_, err = sched.NewJob(
			gocron.DurationJob(cfg.ArchiveInterval),
			gocron.NewTask(func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				defer cancel()
				if _, err := archiver.ArchiveFinished(ctx); err != nil {
					logger.Error("[Scheduler] roster archive failed", zap.Error(err))
				}
			}),
			gocron.WithName("roster-archive"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, err
		}
	}

	sched.Start()
	logger.Info("⏱️ scheduler started",
		zap.Duration("status_sweep_interval", cfg.StatusSweepInterval),
		zap.Bool("roster_archive", archiver != nil))
	return &Scheduler{sched: sched, logger: logger}, nil
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
