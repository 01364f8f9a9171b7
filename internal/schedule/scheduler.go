// Package schedule runs ingestion cycles on a fixed period.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Atlas-Final-Project/data-crawling/internal/ingest"
	"github.com/Atlas-Final-Project/data-crawling/internal/logger"
)

// DefaultPeriod is the gap between cycle starts when the config leaves
// it blank.
const DefaultPeriod = 10 * time.Minute

// Config configures the scheduler.
type Config struct {
	// Period is the interval between cycle starts.
	Period time.Duration `mapstructure:"period" yaml:"period"`
	// SkipInitialRun waits for the first tick instead of running a
	// cycle immediately on start.
	SkipInitialRun bool `mapstructure:"skip_initial_run" yaml:"skip_initial_run"`
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.Period <= 0 {
		c.Period = DefaultPeriod
	}
}

// CycleRunner executes one ingestion cycle.
type CycleRunner interface {
	Run(ctx context.Context) (*ingest.CycleSummary, error)
}

// Scheduler ticks a CycleRunner on a fixed period. Overlapping ticks are
// skipped: if a cycle is still in flight when the next tick fires, the
// tick is logged and dropped.
type Scheduler struct {
	runner CycleRunner
	cfg    Config
	log    logger.Interface

	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler over the given runner.
func NewScheduler(runner CycleRunner, cfg Config, log logger.Interface) *Scheduler {
	cfg.SetDefaults()
	return &Scheduler{
		runner: runner,
		cfg:    cfg,
		log:    log.WithComponent("schedule"),
		cron:   cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger))),
	}
}

// Start begins ticking. It returns once the schedule is installed; the
// cycles themselves run on the cron goroutine.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	spec := fmt.Sprintf("@every %s", s.cfg.Period)
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return fmt.Errorf("install schedule %q: %w", spec, err)
	}

	if !s.cfg.SkipInitialRun {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.tick()
		}()
	}

	s.cron.Start()
	s.log.Info("scheduler started", "period", s.cfg.Period, "skip_initial_run", s.cfg.SkipInitialRun)
	return nil
}

// Stop halts ticking and waits for any in-flight cycle to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	cronCtx := s.cron.Stop()
	<-cronCtx.Done()
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

// tick runs one cycle. The runner enforces at-most-one cycle in flight;
// a tick that lands during a running cycle is dropped here.
func (s *Scheduler) tick() {
	if s.ctx.Err() != nil {
		return
	}

	summary, err := s.runner.Run(s.ctx)
	switch {
	case errors.Is(err, ingest.ErrCycleInFlight):
		s.log.Warn("previous cycle still running, skipping tick")
	case errors.Is(err, context.Canceled):
		s.log.Info("cycle cancelled during shutdown")
	case err != nil:
		s.log.Error("cycle failed", "error", err)
	default:
		s.log.Info("cycle complete",
			"cycle_id", summary.CycleID,
			"fetched", summary.Fetched,
			"inserted", summary.Inserted,
			"updated", summary.Updated,
		)
	}
}
