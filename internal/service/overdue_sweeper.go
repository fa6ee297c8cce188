package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type overdueStore interface {
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type archiveCleaner interface {
	CleanupOlderThan(retention time.Duration) ([]string, error)
}

// OverdueSweeper flips past-due PENDING installments to OVERDUE on a cron
// schedule. The sweep is a single idempotent UPDATE, so overlapping or
// repeated runs are harmless. The same pass prunes archived exports past
// their retention window when an archive is configured.
type OverdueSweeper struct {
	repo      overdueStore
	cache     *CacheService
	archive   archiveCleaner
	retention time.Duration
	schedule  string
	cron      *cron.Cron
	logger    *zap.Logger
	now       func() time.Time
}

// NewOverdueSweeper constructs the sweeper. A nil archive skips export
// pruning.
func NewOverdueSweeper(repo overdueStore, cache *CacheService, archive archiveCleaner, retention time.Duration, schedule string, logger *zap.Logger) *OverdueSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule == "" {
		schedule = "0 1 * * *"
	}
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}
	return &OverdueSweeper{
		repo:      repo,
		cache:     cache,
		archive:   archive,
		retention: retention,
		schedule:  schedule,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the cron entry and begins the scheduler.
func (s *OverdueSweeper) Start(ctx context.Context) error {
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("overdue sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("overdue sweeper started", zap.String("schedule", s.schedule))
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *OverdueSweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Sweep runs one pass immediately.
func (s *OverdueSweeper) Sweep(ctx context.Context) error {
	updated, err := s.repo.MarkOverdue(ctx, s.now())
	if err != nil {
		return err
	}
	if updated > 0 {
		s.logger.Info("installments marked overdue", zap.Int64("count", updated))
		if err := s.cache.Invalidate(ctx, dashboardCachePattern); err != nil {
			s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
		}
	}
	if s.archive != nil {
		deleted, err := s.archive.CleanupOlderThan(s.retention)
		if err != nil {
			s.logger.Warn("export archive cleanup failed", zap.Error(err))
		} else if len(deleted) > 0 {
			s.logger.Info("archived exports pruned", zap.Int("count", len(deleted)))
		}
	}
	return nil
}
