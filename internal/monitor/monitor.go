// internal/monitor/monitor.go
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/akshita317/devinsight/internal/apperr"
	"github.com/akshita317/devinsight/internal/model"
	"github.com/akshita317/devinsight/internal/scoring"
	"github.com/akshita317/devinsight/internal/store"
)

const (
	openPRLimit       = 50
	recentCommitLimit = 10

	// Number of pull requests and commits included in a health detail payload.
	detailPreviewLimit = 5
)

// DataSource is the slice of the hosting-API client the workflow depends on.
type DataSource interface {
	FetchMetadata(ctx context.Context, owner, name string) (*model.RepositoryMetadata, error)
	FetchSnapshot(ctx context.Context, owner, name string) (*model.RawRepositorySnapshot, error)
	FetchOpenPullRequests(ctx context.Context, owner, name string, limit int) []model.PullRequestSummary
	FetchRecentCommits(ctx context.Context, owner, name string, limit int) []model.CommitSummary
	HasReadme(ctx context.Context, owner, name string) bool
	HasLicense(ctx context.Context, owner, name string) bool
}

// Service orchestrates fetching, scoring and persisting repositories.
type Service struct {
	store  store.Store
	source DataSource
	logger *slog.Logger
}

// NewService creates a new Service instance.
func NewService(st store.Store, source DataSource, logger *slog.Logger) *Service {
	return &Service{
		store:  st,
		source: source,
		logger: logger,
	}
}

// AddRepository starts monitoring a repository: it verifies no active record
// exists, fetches a fresh snapshot and the open pull requests, scores the
// snapshot and persists a new record. Persistence happens only after every
// required fetch succeeded. Re-adding a previously removed repository inserts
// a new row; the dedupe check is scoped to active records.
func (s *Service) AddRepository(ctx context.Context, owner, name string) (model.RepositoryRecord, error) {
	if err := validateRepoName(owner, name); err != nil {
		return model.RepositoryRecord{}, err
	}
	fullName := owner + "/" + name
	logger := s.logger.With("owner", owner, "repo", name)

	_, err := s.store.GetActiveByFullName(ctx, fullName)
	if err == nil {
		return model.RepositoryRecord{}, fmt.Errorf("repository %s: %w", fullName, apperr.ErrAlreadyMonitored)
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.RepositoryRecord{}, fmt.Errorf("checking existing record for %s: %w", fullName, err)
	}

	snap, err := s.source.FetchSnapshot(ctx, owner, name)
	if err != nil {
		return model.RepositoryRecord{}, err
	}
	prs := s.source.FetchOpenPullRequests(ctx, owner, name, openPRLimit)
	score := scoring.Score(snap)

	rec, err := s.store.Create(ctx, store.CreateParams{
		Name:            snap.Metadata.Name,
		Owner:           snap.Metadata.Owner,
		FullName:        snap.Metadata.FullName,
		Description:     snap.Metadata.Description,
		URL:             snap.Metadata.URL,
		Language:        snap.Metadata.Language,
		Stars:           snap.Metadata.Stars,
		Forks:           snap.Metadata.Forks,
		HealthScore:     score,
		OpenIssuesCount: snap.Metadata.OpenIssues,
		OpenPRsCount:    len(prs),
		LastAnalyzedAt:  time.Now().UTC(),
	})
	if err != nil {
		return model.RepositoryRecord{}, err
	}

	logger.Info("Repository added to monitoring", "record_id", rec.ID, "health_score", rec.HealthScore)
	return rec, nil
}

// ListRepositories returns all actively monitored records.
func (s *Service) ListRepositories(ctx context.Context) ([]model.RepositoryRecord, error) {
	return s.store.ListActive(ctx)
}

// GetHealthDetail performs a fresh fetch and scoring pass without touching
// the store. The metadata fetch fails fast; the auxiliary fetches run
// concurrently and degrade to empty or false results.
func (s *Service) GetHealthDetail(ctx context.Context, owner, name string) (*model.HealthDetail, error) {
	if err := validateRepoName(owner, name); err != nil {
		return nil, err
	}

	meta, err := s.source.FetchMetadata(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	var (
		prs        []model.PullRequestSummary
		commits    []model.CommitSummary
		hasReadme  bool
		hasLicense bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		prs = s.source.FetchOpenPullRequests(gctx, owner, name, openPRLimit)
		return nil
	})
	g.Go(func() error {
		commits = s.source.FetchRecentCommits(gctx, owner, name, recentCommitLimit)
		return nil
	})
	g.Go(func() error {
		hasReadme = s.source.HasReadme(gctx, owner, name)
		return nil
	})
	g.Go(func() error {
		hasLicense = s.source.HasLicense(gctx, owner, name)
		return nil
	})
	_ = g.Wait()

	snap := &model.RawRepositorySnapshot{
		Metadata:   *meta,
		HasReadme:  hasReadme,
		HasLicense: hasLicense,
	}
	if len(commits) > 0 {
		days := int(time.Since(commits[0].AuthoredAt).Hours() / 24)
		snap.DaysSinceLastCommit = &days
	}

	return &model.HealthDetail{
		HealthScore: scoring.Score(snap),
		Repository:  *meta,
		Metrics: model.HealthMetrics{
			OpenPRs:       len(prs),
			RecentCommits: len(commits),
			Stars:         meta.Stars,
			Forks:         meta.Forks,
		},
		PullRequests: truncate(prs, detailPreviewLimit),
		Commits:      truncate(commits, detailPreviewLimit),
	}, nil
}

// RemoveRepository stops monitoring a record by flipping its monitored flag.
// The record stays retrievable by id; removing an already-removed record
// succeeds silently.
func (s *Service) RemoveRepository(ctx context.Context, id int64) error {
	if err := s.store.SetMonitored(ctx, id, false); err != nil {
		return err
	}
	s.logger.Info("Repository removed from monitoring", "record_id", id)
	return nil
}

// RefreshRepository re-fetches and re-scores an existing record, persisting
// the updated metrics. Used by the background refresher.
func (s *Service) RefreshRepository(ctx context.Context, rec model.RepositoryRecord) error {
	snap, err := s.source.FetchSnapshot(ctx, rec.Owner, rec.Name)
	if err != nil {
		return err
	}
	prs := s.source.FetchOpenPullRequests(ctx, rec.Owner, rec.Name, openPRLimit)

	_, err = s.store.UpdateAnalysis(ctx, store.UpdateAnalysisParams{
		ID:              rec.ID,
		Description:     snap.Metadata.Description,
		Language:        snap.Metadata.Language,
		Stars:           snap.Metadata.Stars,
		Forks:           snap.Metadata.Forks,
		HealthScore:     scoring.Score(snap),
		OpenIssuesCount: snap.Metadata.OpenIssues,
		OpenPRsCount:    len(prs),
		LastAnalyzedAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("updating analysis for %s: %w", rec.FullName, err)
	}
	return nil
}

func validateRepoName(owner, name string) error {
	if owner == "" || name == "" || strings.Contains(owner, "/") || strings.Contains(name, "/") {
		return &apperr.InvalidRepoNameError{Owner: owner, Name: name}
	}
	return nil
}

func truncate[T any](items []T, limit int) []T {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
