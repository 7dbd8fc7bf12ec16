// Package scheduler triggers recurring aggregation passes and the
// cold-start pass.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/JakeFAU/opportunity-discovery/internal/aggregate"
)

const defaultInterval = 6 * time.Hour

// PassRunner executes one aggregation pass.
type PassRunner interface {
	Run(ctx context.Context) (aggregate.PassReport, error)
}

// Counter reports how many opportunities are stored.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Config controls the schedule.
type Config struct {
	Interval     time.Duration
	RunOnStartup bool
}

// Scheduler wraps robfig/cron and owns the pass loop.
type Scheduler struct {
	cron    *cron.Cron
	runner  PassRunner
	counter Counter
	cfg     Config
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// New creates a Scheduler. A non-positive interval uses 6h.
func New(runner PassRunner, counter Counter, cfg Config, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	logger = logger.Named("scheduler")
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
		),
		runner:  runner,
		counter: counter,
		cfg:     cfg,
		logger:  logger,
	}
}

// Spec returns the cron expression the scheduler registers.
func (s *Scheduler) Spec() string {
	return fmt.Sprintf("@every %s", s.cfg.Interval)
}

// Start registers the recurring pass and starts the cron loop. When
// RunOnStartup is set the cold-start check runs in the background.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.Spec(), func() { s.runPass(ctx, "interval") }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	s.cron.Start()
	s.logger.Info("cron started", zap.String("spec", s.Spec()))

	if s.cfg.RunOnStartup {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if _, err := s.StartupCheck(ctx); err != nil {
				s.logger.Error("startup pass failed", zap.Error(err))
			}
		}()
	}
	return nil
}

// StartupCheck runs one pass only when the store is empty. It reports
// whether a pass ran.
func (s *Scheduler) StartupCheck(ctx context.Context) (bool, error) {
	n, err := s.counter.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count opportunities: %w", err)
	}
	if n > 0 {
		s.logger.Info("store already populated, skipping startup pass", zap.Int("records", n))
		return false, nil
	}
	s.logger.Info("store empty, running startup pass")
	if _, err := s.runner.Run(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// Stop halts the cron loop and waits for a running pass to drain or ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	cronDone := s.cron.Stop()
	startupDone := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(startupDone)
	}()
	for _, done := range []<-chan struct{}{cronDone.Done(), startupDone} {
		select {
		case <-done:
		case <-ctx.Done():
			return fmt.Errorf("scheduler stop: %w", ctx.Err())
		}
	}
	s.logger.Info("cron stopped")
	return nil
}

func (s *Scheduler) runPass(ctx context.Context, trigger string) {
	report, err := s.runner.Run(ctx)
	switch {
	case errors.Is(err, aggregate.ErrPassInProgress):
		s.logger.Info("pass already running, tick skipped", zap.String("trigger", trigger))
	case err != nil:
		s.logger.Error("scheduled pass failed", zap.String("trigger", trigger), zap.Error(err))
	default:
		s.logger.Info("scheduled pass complete",
			zap.String("trigger", trigger),
			zap.String("status", report.Status),
			zap.Int("inserted", report.Inserted),
			zap.Int("updated", report.Updated),
		)
	}
}

type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
