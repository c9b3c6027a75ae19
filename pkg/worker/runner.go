package worker

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/market-scanner/pkg/logger"
)

// Worker interface that background workers should implement
type Worker interface {
	// Name returns worker name for logging
	Name() string
	// Run executes one iteration of work
	Run(ctx context.Context) error
}

// Runner executes a Worker in a loop. After a clean iteration it sleeps the
// full interval; after an error or a recovered panic it sleeps only the
// shortened backoff so the next attempt comes sooner. The sleep starts after
// the iteration finishes, so the effective period is interval plus iteration
// latency.
type Runner struct {
	worker   Worker
	interval time.Duration
	backoff  time.Duration
	name     string
}

// NewRunner creates runner for a worker
func NewRunner(worker Worker, interval, backoff time.Duration) *Runner {
	return &Runner{
		worker:   worker,
		interval: interval,
		backoff:  backoff,
		name:     worker.Name(),
	}
}

// RunLoop blocks, executing iterations until ctx is cancelled
func (r *Runner) RunLoop(ctx context.Context) error {
	logger.Info("🚀 worker started",
		zap.String("worker", r.name),
		zap.Duration("interval", r.interval),
	)

	for {
		sleep := r.interval

		if err := r.safeRun(ctx); err != nil {
			logger.Error("worker iteration failed",
				zap.String("worker", r.name),
				zap.Error(err),
			)
			sleep = r.backoff
		}

		select {
		case <-ctx.Done():
			logger.Info("🛑 worker stopping",
				zap.String("worker", r.name),
			)
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// safeRun converts a panic inside an iteration into an error so one bad cycle
// never kills the loop
func (r *Runner) safeRun(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in worker: %v", rec)
		}
	}()
	return r.worker.Run(ctx)
}

// Supervisor restarts a long-running function with a fixed backoff if it ever
// returns while the context is still live, reporting each crash
type Supervisor struct {
	name    string
	run     func(ctx context.Context) error
	backoff time.Duration
	onCrash func(err error)
}

// NewSupervisor creates supervisor; onCrash may be nil
func NewSupervisor(name string, run func(ctx context.Context) error, backoff time.Duration, onCrash func(err error)) *Supervisor {
	return &Supervisor{
		name:    name,
		run:     run,
		backoff: backoff,
		onCrash: onCrash,
	}
}

// Run blocks until ctx is cancelled
func (s *Supervisor) Run(ctx context.Context) {
	for {
		err := s.safeRun(ctx)

		if ctx.Err() != nil {
			return
		}

		logger.Error("supervised routine exited, restarting",
			zap.String("name", s.name),
			zap.Duration("backoff", s.backoff),
			zap.Error(err),
		)
		if s.onCrash != nil {
			s.onCrash(err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.backoff):
		}
	}
}

func (s *Supervisor) safeRun(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return s.run(ctx)
}
