// internal/model/models.go
package model

import "time"

// RepositoryRecord is the persisted unit for a monitored repository.
// At most one record with IsMonitored=true exists per FullName; removal
// flips IsMonitored to false, records are never hard-deleted.
type RepositoryRecord struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Owner           string     `json:"owner"`
	FullName        string     `json:"full_name"`
	Description     string     `json:"description"`
	URL             string     `json:"url"`
	Language        *string    `json:"language"`
	Stars           int        `json:"stars"`
	Forks           int        `json:"forks"`
	HealthScore     float64    `json:"health_score"`
	OpenIssuesCount int        `json:"open_issues_count"`
	OpenPRsCount    int        `json:"open_prs_count"`
	IsMonitored     bool       `json:"is_monitored"`
	LastAnalyzedAt  *time.Time `json:"last_analyzed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// RepositoryMetadata is the basic repository information returned by the
// hosting API. Description is the empty string when absent upstream.
type RepositoryMetadata struct {
	Name        string    `json:"name"`
	Owner       string    `json:"owner"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Language    *string   `json:"language"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	OpenIssues  int       `json:"open_issues"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RawRepositorySnapshot is the ephemeral, normalized shape consumed by the
// health scorer. A nil DaysSinceLastCommit means the commit history was
// missing or unreadable.
type RawRepositorySnapshot struct {
	Metadata            RepositoryMetadata
	HasReadme           bool
	HasLicense          bool
	DaysSinceLastCommit *int
}

// PullRequestSummary describes a single open pull request.
type PullRequestSummary struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	URL       string    `json:"url"`
}

// CommitSummary describes a single commit. SHA is abbreviated to 7
// characters and Message is the first line, truncated to 100 characters.
type CommitSummary struct {
	SHA        string    `json:"sha"`
	Message    string    `json:"message"`
	Author     string    `json:"author"`
	AuthoredAt time.Time `json:"date"`
	URL        string    `json:"url"`
}

// HealthMetrics holds the headline counters of a health detail payload.
type HealthMetrics struct {
	OpenPRs       int `json:"open_prs"`
	RecentCommits int `json:"recent_commits"`
	Stars         int `json:"stars"`
	Forks         int `json:"forks"`
}

// HealthDetail is the payload returned by the on-demand health check. It is
// always assembled from a fresh fetch and never read from the store.
type HealthDetail struct {
	HealthScore  float64              `json:"health_score"`
	Repository   RepositoryMetadata   `json:"repository"`
	Metrics      HealthMetrics        `json:"metrics"`
	PullRequests []PullRequestSummary `json:"pull_requests"`
	Commits      []CommitSummary      `json:"commits"`
}

// RepositoryOverview is the per-repository projection inside OverviewStats.
type RepositoryOverview struct {
	Name        string  `json:"name"`
	HealthScore float64 `json:"health_score"`
	Issues      int     `json:"issues"`
	PRs         int     `json:"prs"`
}

// OverviewStats summarizes the whole monitored set.
type OverviewStats struct {
	TotalRepositories  int                  `json:"total_repositories"`
	AverageHealthScore float64              `json:"average_health_score"`
	TotalOpenIssues    int                  `json:"total_open_issues"`
	TotalOpenPRs       int                  `json:"total_open_prs"`
	Repositories       []RepositoryOverview `json:"repositories"`
}
