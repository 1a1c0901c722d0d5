// Package scheduler runs the two recurring scrape jobs: a nightly sweep of
// recent dates and an intraday poll of today's slate while games are live.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"ncaam_v1/scraper/internal/config"
	"ncaam_v1/scraper/internal/runner"
)

// Scheduler manages the background scrape jobs. The nightly sweep re-scrapes
// the trailing window of dates so late corrections land; the live poll keeps
// today's scores and detail current during game windows.
type Scheduler struct {
	cfg      *config.Config
	runner   *runner.Runner
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}
}

// NewScheduler creates a scheduler around a runner.
func NewScheduler(cfg *config.Config, r *runner.Runner) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		runner:   r,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start registers the nightly sweep and starts the live polling loop.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.cfg.NightlySweepCron, func() {
		log.Info().Msg("Running nightly sweep...")
		if err := s.nightlySweep(ctx); err != nil {
			log.Error().Err(err).Msg("Nightly sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule nightly sweep: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.NightlySweepCron).
		Int("lookback_days", s.cfg.SweepLookbackDays).
		Msg("Nightly sweep scheduled")

	interval := time.Duration(s.cfg.LivePollInterval) * time.Second
	s.ticker = time.NewTicker(interval)
	log.Info().
		Dur("interval", interval).
		Msg("Live polling started")

	go s.pollToday(ctx)

	return nil
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}
	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// pollToday re-runs today's date on every tick. Completed dates are skipped
// inside the runner, so out-of-season ticks cost one schedule fetch at most.
func (s *Scheduler) pollToday(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping live polling")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping live polling")
			return
		case <-s.ticker.C:
			if err := s.runner.RunDate(ctx, time.Now(), false); err != nil {
				log.Error().Err(err).Msg("Live poll failed")
			}
		}
	}
}

// nightlySweep re-scrapes the trailing lookback window. The sweep forces
// already-complete dates so late score corrections and postponements are
// picked up.
func (s *Scheduler) nightlySweep(ctx context.Context) error {
	start := time.Now()

	end := time.Now()
	begin := end.AddDate(0, 0, -s.cfg.SweepLookbackDays)
	if err := s.runner.RunRange(ctx, begin, end, true); err != nil {
		return err
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Msg("Nightly sweep complete")
	return nil
}
