package scheduler

import (
	"context"
	"time"

	"wuroud-pos/internal/billing"
	"wuroud-pos/internal/database"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the nightly sales compaction: per-unit detail from finished
// days is folded into daily totals, and totals outside the retention window
// are dropped, in memory and in the database alike.
type Scheduler struct {
	cron          *cron.Cron
	agg           *billing.SalesAggregator
	stores        *database.Stores
	retentionDays int
	schedule      string
	logger        *zap.Logger
}

// New creates the scheduler; schedule is a standard 5-field cron spec.
func New(agg *billing.SalesAggregator, stores *database.Stores, retentionDays int, schedule string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:          cron.New(),
		agg:           agg,
		stores:        stores,
		retentionDays: retentionDays,
		schedule:      schedule,
		logger:        logger,
	}
}

// Start registers the nightly job and begins ticking.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.compactSales); err != nil {
		s.logger.Error("failed to schedule sales compaction", zap.Error(err))
		return
	}
	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) compactSales() {
	s.logger.Info("compacting sales history")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := time.Now()
	changed := s.agg.Prune(s.retentionDays)
	cutoff := billing.DayKey(now.AddDate(0, 0, -(s.retentionDays - 1)))

	if err := s.stores.SaveDailyTotals(ctx, changed, cutoff); err != nil {
		s.logger.Error("failed to persist daily totals", zap.Error(err))
		return
	}
	if err := s.stores.DeleteTransactionsBefore(ctx, billing.DayKey(now)); err != nil {
		s.logger.Error("failed to drop compacted transactions", zap.Error(err))
		return
	}

	s.logger.Info("sales history compacted", zap.Int("days_touched", len(changed)))
}
