// Package jobs runs periodic background work: rent reminders and expired
// session cleanup.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/journeyconnect/journeyconnect/internal/logging"
	"github.com/journeyconnect/journeyconnect/internal/server/observability"
)

type Job func(ctx context.Context) error

// Runner ticks jobs until its context is cancelled.
type Runner struct {
	ctx context.Context
	log logging.Logger
	wg  sync.WaitGroup
}

func New(ctx context.Context, log logging.Logger) *Runner { return &Runner{ctx: ctx, log: log} }

// Every runs fn every interval in its own goroutine. A failing or
// panicking run is counted and reported; the schedule continues.
func (r *Runner) Every(interval time.Duration, name string, fn Job) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-r.ctx.Done():
				return
			case <-t.C:
				r.runOnce(name, fn)
			}
		}
	}()
}

// Wait blocks until every scheduled job has observed cancellation.
func (r *Runner) Wait() { r.wg.Wait() }

func (r *Runner) runOnce(name string, fn Job) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic in job %s: %v", name, rec)
			jobErrors.WithLabelValues(name).Inc()
			r.log.Error(r.ctx, "job panicked", "job", name, "panic", rec)
			observability.CaptureErr(err)
		}
		jobRuns.WithLabelValues(name).Inc()
		jobDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	if err := fn(r.ctx); err != nil {
		jobErrors.WithLabelValues(name).Inc()
		r.log.Warn(r.ctx, "job failed", "job", name, "error", err)
		observability.CaptureErr(err)
	}
}
