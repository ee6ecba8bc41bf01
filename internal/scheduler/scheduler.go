package scheduler

import (
	"context"
	"fmt"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without a zoneinfo database.

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/stockledger/internal/config"
	"github.com/mamadbah2/stockledger/internal/domain/models"
	"github.com/mamadbah2/stockledger/internal/service/reporting"
)

// SnapshotGenerator produces the daily valuation.
type SnapshotGenerator interface {
	GenerateDailySnapshot(ctx context.Context, at time.Time) (models.ValuationSnapshot, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	location *time.Location
	reports  SnapshotGenerator
	logger   *zap.Logger
}

// NewScheduler creates a scheduler that runs the valuation report on the
// configured cron schedule in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, reports SnapshotGenerator, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.CronSchedule,
		location: loc,
		reports:  reports,
		logger:   logger,
	}, nil
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runValuationReport); err != nil {
		return fmt.Errorf("schedule valuation report %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler",
		zap.String("schedule", s.schedule),
		zap.String("timezone", s.location.String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runValuationReport() {
	s.logger.Info("generating valuation report")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	snapshot, err := s.reports.GenerateDailySnapshot(ctx, time.Now().In(s.location))
	if err != nil {
		s.logger.Error("failed to generate valuation report", zap.Error(err))
		return
	}

	s.logger.Info("valuation report generated", zap.String("summary", reporting.FormatSummary(snapshot)))
}
