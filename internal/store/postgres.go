// internal/store/postgres.go
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akshita317/devinsight/internal/apperr"
	"github.com/akshita317/devinsight/internal/model"
)

// Compile-time interface satisfaction check.
var _ Store = (*Postgres)(nil)

// uniqueViolation is the Postgres error code raised by the partial unique
// index on (full_name) WHERE is_monitored.
const uniqueViolation = "23505"

const recordColumns = `id, name, owner, full_name, description, url, language,
	stars, forks, health_score, open_issues_count, open_prs_count,
	is_monitored, last_analyzed_at, created_at, updated_at`

// Postgres is the pgx-backed implementation of Store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store backed by the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Create inserts a new record. The partial unique index turns a concurrent
// duplicate add into apperr.ErrAlreadyMonitored instead of a second row.
func (p *Postgres) Create(ctx context.Context, arg CreateParams) (model.RepositoryRecord, error) {
	query := `
		INSERT INTO repositories (
			name, owner, full_name, description, url, language,
			stars, forks, health_score, open_issues_count, open_prs_count,
			last_analyzed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + recordColumns

	row := p.pool.QueryRow(ctx, query,
		arg.Name, arg.Owner, arg.FullName, arg.Description, arg.URL, arg.Language,
		arg.Stars, arg.Forks, arg.HealthScore, arg.OpenIssuesCount, arg.OpenPRsCount,
		arg.LastAnalyzedAt,
	)

	rec, err := scanRecord(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return model.RepositoryRecord{}, fmt.Errorf("repository %s: %w", arg.FullName, apperr.ErrAlreadyMonitored)
		}
		return model.RepositoryRecord{}, fmt.Errorf("create repository %s: %w", arg.FullName, err)
	}
	return rec, nil
}

// GetByID retrieves a record by surrogate id, monitored or not.
func (p *Postgres) GetByID(ctx context.Context, id int64) (model.RepositoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM repositories WHERE id = $1`
	return scanRecord(p.pool.QueryRow(ctx, query, id))
}

// GetActiveByFullName retrieves the single active record for a full name.
// Soft-deleted rows with the same full name are ignored.
func (p *Postgres) GetActiveByFullName(ctx context.Context, fullName string) (model.RepositoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM repositories WHERE full_name = $1 AND is_monitored`
	return scanRecord(p.pool.QueryRow(ctx, query, fullName))
}

// ListActive returns all monitored records ordered by creation.
func (p *Postgres) ListActive(ctx context.Context) ([]model.RepositoryRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM repositories WHERE is_monitored ORDER BY id`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	var records []model.RepositoryRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repository: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate repositories: %w", err)
	}
	return records, nil
}

// UpdateAnalysis persists the result of a re-analysis pass.
func (p *Postgres) UpdateAnalysis(ctx context.Context, arg UpdateAnalysisParams) (model.RepositoryRecord, error) {
	query := `
		UPDATE repositories SET
			description = $2,
			language = $3,
			stars = $4,
			forks = $5,
			health_score = $6,
			open_issues_count = $7,
			open_prs_count = $8,
			last_analyzed_at = $9,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + recordColumns

	row := p.pool.QueryRow(ctx, query,
		arg.ID, arg.Description, arg.Language, arg.Stars, arg.Forks,
		arg.HealthScore, arg.OpenIssuesCount, arg.OpenPRsCount, arg.LastAnalyzedAt,
	)
	return scanRecord(row)
}

// SetMonitored flips the monitored flag. It succeeds whenever the id exists,
// even if the flag already has the requested value.
func (p *Postgres) SetMonitored(ctx context.Context, id int64, monitored bool) error {
	query := `UPDATE repositories SET is_monitored = $2, updated_at = now() WHERE id = $1`

	tag, err := p.pool.Exec(ctx, query, id, monitored)
	if err != nil {
		return fmt.Errorf("set monitored for record %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("record %d: %w", id, apperr.ErrRecordNotFound)
	}
	return nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (model.RepositoryRecord, error) {
	var rec model.RepositoryRecord
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Owner, &rec.FullName, &rec.Description,
		&rec.URL, &rec.Language, &rec.Stars, &rec.Forks, &rec.HealthScore,
		&rec.OpenIssuesCount, &rec.OpenPRsCount, &rec.IsMonitored,
		&rec.LastAnalyzedAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	return rec, err
}
