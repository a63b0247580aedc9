package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/i474232898/wbgt-forecast/internal/dashboard"
)

// cycleTimeout bounds one bulletin run across all horizons.
const cycleTimeout = 2 * time.Minute

// Refresher produces a forecast report across every horizon.
type Refresher interface {
	Refresh(ctx context.Context) dashboard.Report
}

// Scheduler periodically logs a forecast bulletin.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler. A non-positive interval disables it.
func New(refresher Refresher, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		refresher: refresher,
		interval:  interval,
		logger:    logger.With("component", "bulletin"),
	}
}

// Start schedules the bulletin job and starts the underlying scheduler. The
// first bulletin runs immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("bulletin disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.logger.Info("bulletin scheduled", "interval", s.interval)
	s.scheduler.StartAsync()
	return nil
}

// RunOnce runs one bulletin cycle and returns its report.
func (s *Scheduler) RunOnce(parent context.Context) dashboard.Report {
	ctx, cancel := context.WithTimeout(parent, cycleTimeout)
	defer cancel()

	cycle := uuid.NewString()
	log := s.logger.With("cycle_id", cycle)
	log.Info("bulletin started")

	report := s.refresher.Refresh(ctx)

	failed := 0
	for _, r := range report.Results {
		if r.WBGT == nil {
			failed++
			log.Warn("bulletin horizon", "horizon", r.Horizon, "band", r.Band.Level, "err", r.Error)
			continue
		}
		log.Info("bulletin horizon",
			"horizon", r.Horizon,
			"wbgt", *r.WBGT,
			"band", r.Band.Level,
			"guidance", r.Band.Guidance,
		)
	}

	log.Info("bulletin completed", "horizons", len(report.Results), "failed", failed)
	return report
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
