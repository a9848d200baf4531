// Package scheduler runs the periodic maintenance jobs of the server on cron
// expressions.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one unit of periodic work. Returned errors are logged.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner. A job that is still running when its next
// tick arrives is skipped, and a panicking job does not stop the others.
type Scheduler struct {
	cron    *cron.Cron
	log     zerolog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
}

// New creates a stopped scheduler. Each run gets at most timeout; zero means
// no limit.
func New(log zerolog.Logger, timeout time.Duration) *Scheduler {
	adapter := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(adapter),
			cron.SkipIfStillRunning(adapter),
		)),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		timeout: timeout,
	}
}

// ScheduleCron adds a recurring job. expr is a standard five-field cron
// expression or a descriptor such as "@hourly" or "@every 10m".
func (s *Scheduler) ScheduleCron(name, expr string, job Job) error {
	_, err := s.cron.AddFunc(expr, func() { s.run(name, job) })
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, expr, err)
	}
	s.log.Info().Str("job", name).Str("spec", expr).Msg("job scheduled")
	return nil
}

// RunNow runs job once on the calling goroutine with the scheduler's timeout.
func (s *Scheduler) RunNow(name string, job Job) {
	s.run(name, job)
}

func (s *Scheduler) run(name string, job Job) {
	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	if err := job(ctx); err != nil {
		s.log.Error().Err(err).Str("job", name).Msg("job failed")
		return
	}
	s.log.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("job finished")
}

// Len returns the number of scheduled jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs, cancels the context of running jobs and waits for
// them to return or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
