/**
 * @description
 * Cron scheduler setup for the ledger reconciliation job.
 */
package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// reconcileTimeout bounds a single reconciliation run.
const reconcileTimeout = 5 * time.Minute

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron       *cron.Cron
	reconciler *Reconciler
	schedule   string
	logger     *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(reconciler *Reconciler, schedule string, logger *zap.Logger) *Scheduler {
	logger = logger.Named("scheduler")
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:       c,
		reconciler: reconciler,
		schedule:   schedule,
		logger:     logger,
	}
}

// Start registers the jobs and starts the cron scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.reconcile); err != nil {
		s.logger.Error("failed to schedule ledger reconciliation job", zap.String("schedule", s.schedule), zap.Error(err))
		return err
	}
	s.logger.Info("scheduled ledger reconciliation job", zap.String("schedule", s.schedule))

	s.cron.Start()
	return nil
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	if _, err := s.reconciler.Run(ctx); err != nil {
		s.logger.Error("ledger reconciliation failed", zap.Error(err))
	}
}
