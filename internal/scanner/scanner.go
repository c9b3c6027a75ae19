package scanner

import (
	"context"
	"time"

	"github.com/selivandex/market-scanner/internal/reports"
)

// Scanner is the driver iteration: one ingestion pass followed by one
// reporting pass. It runs on a single goroutine under pkg/worker, so all
// ledger and accumulator writes are serialized here.
type Scanner struct {
	pipeline *Pipeline
	reports  *reports.Scheduler
}

// NewScanner creates scanner over pipeline and report scheduler
func NewScanner(pipeline *Pipeline, scheduler *reports.Scheduler) *Scanner {
	return &Scanner{
		pipeline: pipeline,
		reports:  scheduler,
	}
}

// Name returns worker name
func (s *Scanner) Name() string {
	return "market-scanner"
}

// Run executes one full cycle
func (s *Scanner) Run(ctx context.Context) error {
	s.pipeline.RunCycle(ctx)
	s.reports.Run(time.Now())
	return ctx.Err()
}
