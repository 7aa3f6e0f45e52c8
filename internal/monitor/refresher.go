// internal/monitor/refresher.go
package monitor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Refresher periodically re-analyzes every monitored repository so stored
// health scores track upstream activity.
type Refresher struct {
	svc         *Service
	interval    time.Duration
	concurrency int
	logger      *slog.Logger
}

// NewRefresher creates a new Refresher instance.
func NewRefresher(svc *Service, interval time.Duration, concurrency int, logger *slog.Logger) *Refresher {
	return &Refresher{
		svc:         svc,
		interval:    interval,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Start begins the continuous refresh process. It blocks until ctx is done.
func (r *Refresher) Start(ctx context.Context) {
	r.logger.Info("Starting refresher", "interval", r.interval.String(), "concurrency", r.concurrency)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runRefreshCycle(ctx)
		case <-ctx.Done():
			r.logger.Info("Refresher shutting down", "reason", ctx.Err())
			return
		}
	}
}

// runRefreshCycle re-analyzes all monitored repositories concurrently. A
// failure on one repository is logged and does not stop the cycle.
func (r *Refresher) runRefreshCycle(ctx context.Context) {
	records, err := r.svc.ListRepositories(ctx)
	if err != nil {
		r.logger.Error("Failed to list repositories for refresh", "error", err)
		return
	}
	if len(records) == 0 {
		return
	}

	r.logger.Info("Starting refresh cycle", "repositories", len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			err := r.svc.RefreshRepository(gctx, rec)
			if err != nil && !errors.Is(err, context.Canceled) {
				r.logger.Error("Failed to refresh repository", "owner", rec.Owner, "repo", rec.Name, "error", err)
			}
			return nil
		})
	}

	_ = g.Wait()
	r.logger.Info("Refresh cycle finished")
}
