package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Refresher reloads cached field metadata of a module.
type Refresher interface {
	Refresh(ctx context.Context, module string) error
}

// MetadataWarmer periodically reloads field metadata of the configured modules
// so compose requests rarely pay for an upstream metadata call. Schedule, a
// five-field cron expression, takes precedence over Interval.
type MetadataWarmer struct {
	Catalog     Refresher
	Modules     []string
	Interval    time.Duration
	Schedule    string
	Concurrency int
}

func (w *MetadataWarmer) Start(ctx context.Context) error {
	if w.Schedule != "" {
		sched, err := ParseSchedule(w.Schedule)
		if err != nil {
			return err
		}
		return w.runScheduled(ctx, sched)
	}
	if w.Interval <= 0 {
		w.Interval = 30 * time.Minute
	}
	t := time.NewTicker(w.Interval)
	defer t.Stop()

	// initial run
	w.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *MetadataWarmer) runScheduled(ctx context.Context, sched cron.Schedule) error {
	w.runOnce(ctx)
	for {
		t := time.NewTimer(time.Until(sched.Next(time.Now())))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

// ParseSchedule parses a standard five-field cron expression.
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("worker: invalid cron schedule %q: %w", expr, err)
	}
	return sched, nil
}

func (w *MetadataWarmer) runOnce(ctx context.Context) {
	start := time.Now()
	var g errgroup.Group
	if w.Concurrency > 0 {
		g.SetLimit(w.Concurrency)
	} else {
		g.SetLimit(4)
	}
	for _, m := range w.Modules {
		g.Go(func() error {
			if err := w.Catalog.Refresh(ctx, m); err != nil {
				slog.Error("metadata warmer: refresh failed.", "module", m, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
	slog.Info("metadata warmer: completed", "modules", len(w.Modules), "took", time.Since(start))
}
