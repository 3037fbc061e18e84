// Package report runs the fetch-and-aggregate pipeline: it fans per-check
// outage fetches out over a bounded worker pool, paces requests to respect
// the provider's rate limit, and collects results back into check
// enumeration order.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hazz-dev/upreport/internal/daterange"
	"github.com/hazz-dev/upreport/internal/pingdom"
	"github.com/hazz-dev/upreport/internal/uptime"
)

// DefaultConcurrency bounds the number of in-flight fetches.
const DefaultConcurrency = 10

// Source defines the provider operations the runner needs.
type Source interface {
	ListChecks(ctx context.Context) ([]pingdom.Check, error)
	Outages(ctx context.Context, checkID int64, window daterange.Range) ([]uptime.Interval, error)
}

// Runner executes the uptime report pipeline.
type Runner struct {
	source      Source
	pacer       *Pacer
	concurrency int
	logger      *slog.Logger
}

// New creates a Runner. Non-positive concurrency falls back to
// DefaultConcurrency; pass nil logger to use the default logger.
func New(source Source, pacer *Pacer, concurrency int, logger *slog.Logger) *Runner {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		source:      source,
		pacer:       pacer,
		concurrency: concurrency,
		logger:      logger,
	}
}

type job struct {
	index int
	check pingdom.Check
}

// Run enumerates all checks and computes one Result per check, in
// enumeration order. Enumeration failure and a degenerate range are fatal;
// a fetch failure is recorded in that check's row only.
func (r *Runner) Run(ctx context.Context, window daterange.Range) ([]uptime.Result, error) {
	if window.Minutes() <= 0 {
		return nil, fmt.Errorf("%w: %s", uptime.ErrInvalidRange, window)
	}

	checks, err := r.source.ListChecks(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerating checks: %w", err)
	}
	r.logger.Info("checks enumerated", "count", len(checks), "range", window.String())

	// Each worker writes only its job's slot, so the slice needs no lock.
	results := make([]uptime.Result, len(checks))
	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < r.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = r.process(ctx, j.check, window)
			}
		}()
	}

	for i, c := range checks {
		jobs <- job{index: i, check: c}
	}
	close(jobs)
	wg.Wait()

	return results, nil
}

func (r *Runner) process(ctx context.Context, check pingdom.Check, window daterange.Range) uptime.Result {
	if r.pacer != nil {
		if err := r.pacer.Wait(ctx); err != nil {
			return uptime.Failed(check.Name, err)
		}
	}

	outages, err := r.source.Outages(ctx, check.ID, window)
	if err != nil {
		r.logger.Warn("fetching outages failed", "check", check.Name, "error", err)
		return uptime.Failed(check.Name, err)
	}

	result, err := uptime.Calculate(window, outages)
	if err != nil {
		// Unreachable: Run validates the range before fan-out.
		return uptime.Failed(check.Name, err)
	}
	result.CheckName = check.Name

	r.logger.Info("check computed",
		"check", check.Name,
		"uptime_percent", result.UptimePercent,
		"downtime_minutes", result.DowntimeMinutes,
	)
	return result
}
