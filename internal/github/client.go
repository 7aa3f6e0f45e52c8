// internal/github/client.go
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/akshita317/devinsight/internal/apperr"
	"github.com/akshita317/devinsight/internal/model"
)

const (
	// unknownAuthor is the placeholder for an unavailable author identity.
	unknownAuthor = "unknown"

	shaLength        = 7
	maxMessageLength = 100
)

// Client is a wrapper around the go-github client. Only FetchMetadata (and
// by extension FetchSnapshot) surfaces errors; the auxiliary lookups degrade
// to empty or false results since they feed best-effort signals.
type Client struct {
	gh     *github.Client
	logger *slog.Logger
}

// NewClient creates and configures a new Client instance. The transport
// stack is, innermost first: an in-memory ETag cache, a secondary-rate-limit
// middleware, and bearer-token auth. An empty token yields unauthenticated
// access with stricter upstream rate limits.
func NewClient(token string, logger *slog.Logger) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	httpClient := github_ratelimit.NewClient(cacheTransport)

	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, ts)
	} else {
		logger.Warn("No GitHub token configured, using unauthenticated access")
	}

	return &Client{
		gh:     github.NewClient(httpClient),
		logger: logger,
	}
}

// NewClientWithBaseURL creates a Client whose requests go to the given base
// URL over the given http.Client. Intended for tests against an httptest
// server.
func NewClientWithBaseURL(httpClient *http.Client, baseURL string, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL + "/")
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	gh := github.NewClient(httpClient)
	gh.BaseURL = u

	return &Client{gh: gh, logger: logger}, nil
}

// FetchMetadata fetches repository details and translates them to our
// internal model. A missing repository maps to apperr.ErrRepoNotFound; any
// other failure maps to apperr.ErrUpstreamUnavailable.
func (c *Client) FetchMetadata(ctx context.Context, owner, name string) (*model.RepositoryMetadata, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, classifyError(owner, name, err)
	}
	return toMetadata(owner, repo), nil
}

// FetchSnapshot assembles the normalized snapshot consumed by the scorer.
// The metadata fetch is mandatory and fails fast; the readme, license and
// commit-history lookups run concurrently and degrade on failure.
func (c *Client) FetchSnapshot(ctx context.Context, owner, name string) (*model.RawRepositorySnapshot, error) {
	meta, err := c.FetchMetadata(ctx, owner, name)
	if err != nil {
		return nil, err
	}

	snap := &model.RawRepositorySnapshot{Metadata: *meta}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.HasReadme = c.HasReadme(gctx, owner, name)
		return nil
	})
	g.Go(func() error {
		snap.HasLicense = c.HasLicense(gctx, owner, name)
		return nil
	})
	g.Go(func() error {
		commits := c.FetchRecentCommits(gctx, owner, name, 1)
		if len(commits) > 0 {
			days := int(time.Since(commits[0].AuthoredAt).Hours() / 24)
			snap.DaysSinceLastCommit = &days
		}
		return nil
	})
	_ = g.Wait()

	return snap, nil
}

// FetchOpenPullRequests lists up to limit open pull requests. Any fetch
// error degrades to an empty result: pull requests are a non-critical
// signal.
func (c *Client) FetchOpenPullRequests(ctx context.Context, owner, name string, limit int) []model.PullRequestSummary {
	opts := &github.PullRequestListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: limit},
	}

	prs, _, err := c.gh.PullRequests.List(ctx, owner, name, opts)
	if err != nil {
		c.logger.Error("Failed to fetch pull requests", "owner", owner, "repo", name, "error", err)
		return nil
	}

	if len(prs) > limit {
		prs = prs[:limit]
	}

	summaries := make([]model.PullRequestSummary, 0, len(prs))
	for _, pr := range prs {
		author := pr.GetUser().GetLogin()
		if author == "" {
			author = unknownAuthor
		}
		summaries = append(summaries, model.PullRequestSummary{
			Number:    pr.GetNumber(),
			Title:     pr.GetTitle(),
			Author:    author,
			CreatedAt: pr.GetCreatedAt().Time,
			UpdatedAt: pr.GetUpdatedAt().Time,
			URL:       pr.GetHTMLURL(),
		})
	}
	return summaries
}

// FetchRecentCommits lists up to limit recent commits, most recent first as
// returned by the API. Any fetch error degrades to an empty result.
func (c *Client) FetchRecentCommits(ctx context.Context, owner, name string, limit int) []model.CommitSummary {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: limit},
	}

	commits, _, err := c.gh.Repositories.ListCommits(ctx, owner, name, opts)
	if err != nil {
		c.logger.Error("Failed to fetch commits", "owner", owner, "repo", name, "error", err)
		return nil
	}

	if len(commits) > limit {
		commits = commits[:limit]
	}

	summaries := make([]model.CommitSummary, 0, len(commits))
	for _, commit := range commits {
		summaries = append(summaries, toCommitSummary(commit))
	}
	return summaries
}

// HasReadme reports whether the repository has a readable README. Any fetch
// failure, including not-found, counts as absence.
func (c *Client) HasReadme(ctx context.Context, owner, name string) bool {
	readme, _, err := c.gh.Repositories.GetReadme(ctx, owner, name, nil)
	return err == nil && readme != nil
}

// HasLicense reports whether the upstream detected a license. Any fetch
// failure counts as absence.
func (c *Client) HasLicense(ctx context.Context, owner, name string) bool {
	license, _, err := c.gh.Repositories.License(ctx, owner, name)
	return err == nil && license != nil
}

// classifyError maps a go-github error to our typed error kinds.
func classifyError(owner, name string, err error) error {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("repository %s/%s: %w", owner, name, apperr.ErrRepoNotFound)
	}
	return fmt.Errorf("%w: fetching %s/%s: %v", apperr.ErrUpstreamUnavailable, owner, name, err)
}

// toMetadata translates a github.Repository object to our internal model.
func toMetadata(owner string, r *github.Repository) *model.RepositoryMetadata {
	return &model.RepositoryMetadata{
		Name:        r.GetName(),
		Owner:       owner,
		FullName:    r.GetFullName(),
		Description: r.GetDescription(),
		URL:         r.GetHTMLURL(),
		Language:    r.Language,
		Stars:       r.GetStargazersCount(),
		Forks:       r.GetForksCount(),
		OpenIssues:  r.GetOpenIssuesCount(),
		CreatedAt:   r.GetCreatedAt().Time,
		UpdatedAt:   r.GetUpdatedAt().Time,
	}
}

// toCommitSummary translates a github.RepositoryCommit, abbreviating the SHA
// and keeping only the first line of the message.
func toCommitSummary(c *github.RepositoryCommit) model.CommitSummary {
	sha := c.GetSHA()
	if len(sha) > shaLength {
		sha = sha[:shaLength]
	}

	message, _, _ := strings.Cut(c.GetCommit().GetMessage(), "\n")
	if len(message) > maxMessageLength {
		message = message[:maxMessageLength]
	}

	author := c.GetCommit().GetAuthor().GetName()
	if author == "" {
		author = unknownAuthor
	}

	return model.CommitSummary{
		SHA:        sha,
		Message:    message,
		Author:     author,
		AuthoredAt: c.GetCommit().GetAuthor().GetDate().Time,
		URL:        c.GetHTMLURL(),
	}
}
