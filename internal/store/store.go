// internal/store/store.go
package store

import (
	"context"
	"time"

	"github.com/akshita317/devinsight/internal/model"
)

// CreateParams holds the fields of a new repository record. The store
// assigns the surrogate id and the created/updated timestamps.
type CreateParams struct {
	Name            string
	Owner           string
	FullName        string
	Description     string
	URL             string
	Language        *string
	Stars           int
	Forks           int
	HealthScore     float64
	OpenIssuesCount int
	OpenPRsCount    int
	LastAnalyzedAt  time.Time
}

// UpdateAnalysisParams holds the fields mutated by a re-analysis pass.
type UpdateAnalysisParams struct {
	ID              int64
	Description     string
	Language        *string
	Stars           int
	Forks           int
	HealthScore     float64
	OpenIssuesCount int
	OpenPRsCount    int
	LastAnalyzedAt  time.Time
}

// Store is the persistence contract for repository records.
//
// Create returns apperr.ErrAlreadyMonitored when an active record with the
// same full name exists. GetByID and GetActiveByFullName return pgx.ErrNoRows
// when nothing matches. SetMonitored returns apperr.ErrRecordNotFound for an
// unknown id and succeeds regardless of the record's current monitored state.
type Store interface {
	Create(ctx context.Context, arg CreateParams) (model.RepositoryRecord, error)
	GetByID(ctx context.Context, id int64) (model.RepositoryRecord, error)
	GetActiveByFullName(ctx context.Context, fullName string) (model.RepositoryRecord, error)
	ListActive(ctx context.Context) ([]model.RepositoryRecord, error)
	UpdateAnalysis(ctx context.Context, arg UpdateAnalysisParams) (model.RepositoryRecord, error)
	SetMonitored(ctx context.Context, id int64, monitored bool) error
}
