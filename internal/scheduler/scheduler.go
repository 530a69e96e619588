package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/phuslu/log"
	"github.com/robfig/cron/v3"

	"MarketFusion/internal/pipeline"
)

// Runner executes one fusion run.
type Runner interface {
	Run(ctx context.Context) (*pipeline.Result, error)
}

// Scheduler triggers whole pipeline runs on a cron expression. Runs never
// overlap: a tick that fires while a run is in progress is skipped.
type Scheduler struct {
	Cron   *cron.Cron
	Runner Runner
	Ctx    context.Context

	// job is the single skip-if-running wrapper shared by cron ticks and
	// RunNow.
	job cron.Job

	mu      sync.Mutex
	lastErr error
	runs    int
}

// NewScheduler creates a new Scheduler with a seconds-resolution parser.
func NewScheduler(ctx context.Context, runner Runner) *Scheduler {
	s := &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Runner: runner,
		Ctx:    ctx,
	}
	s.job = cron.NewChain(cron.SkipIfStillRunning(skipLogger{})).Then(cron.FuncJob(s.run))
	return s
}

// Register adds the fusion run on a cron expression.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.Cron.AddJob(expr, s.job); err != nil {
		return fmt.Errorf("register fusion run %q: %w", expr, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("entries", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunNow executes one run synchronously (RUN_ON_START). It is skipped when a
// run is already in progress.
func (s *Scheduler) RunNow() {
	s.job.Run()
}

func (s *Scheduler) run() {
	if s.Ctx.Err() != nil {
		return
	}
	res, err := s.Runner.Run(s.Ctx)

	s.mu.Lock()
	s.runs++
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("scheduled run failed")
		return
	}
	log.Info().
		Str("run_id", res.RunID).
		Int("rows", res.Rows).
		Msg("scheduled run complete")
}

// Stats returns the number of runs executed and the error of the last one.
func (s *Scheduler) Stats() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs, s.lastErr
}

// skipLogger reports skipped ticks through phuslu/log.
type skipLogger struct{}

func (skipLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Info().Msg("scheduler: " + msg)
}

func (skipLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Msg("scheduler: " + msg)
}
