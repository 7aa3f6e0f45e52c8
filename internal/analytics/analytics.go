// internal/analytics/analytics.go
package analytics

import (
	"context"
	"log/slog"

	"github.com/montanaflynn/stats"

	"github.com/akshita317/devinsight/internal/model"
	"github.com/akshita317/devinsight/internal/store"
)

// Aggregator computes portfolio-level statistics over the monitored set.
type Aggregator struct {
	store  store.Store
	logger *slog.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(st store.Store, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		store:  st,
		logger: logger,
	}
}

// Overview loads the active monitored set and summarizes it.
func (a *Aggregator) Overview(ctx context.Context) (model.OverviewStats, error) {
	records, err := a.store.ListActive(ctx)
	if err != nil {
		return model.OverviewStats{}, err
	}
	return Summarize(records), nil
}

// Summarize is the pure aggregation over a set of records. The per-repository
// projection preserves the input ordering; an empty set yields an average
// score of 0 rather than an error.
func Summarize(records []model.RepositoryRecord) model.OverviewStats {
	overview := model.OverviewStats{
		TotalRepositories: len(records),
		Repositories:      make([]model.RepositoryOverview, 0, len(records)),
	}

	scores := make([]float64, 0, len(records))
	for _, rec := range records {
		overview.TotalOpenIssues += rec.OpenIssuesCount
		overview.TotalOpenPRs += rec.OpenPRsCount
		scores = append(scores, rec.HealthScore)

		overview.Repositories = append(overview.Repositories, model.RepositoryOverview{
			Name:        rec.FullName,
			HealthScore: rec.HealthScore,
			Issues:      rec.OpenIssuesCount,
			PRs:         rec.OpenPRsCount,
		})
	}

	if len(scores) > 0 {
		// stats.Mean only errors on empty input, which is excluded here.
		mean, _ := stats.Mean(scores)
		overview.AverageHealthScore, _ = stats.Round(mean, 2)
	}

	return overview
}
