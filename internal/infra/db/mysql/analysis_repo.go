package mysql

import (
	"context"
	"database/sql"
	"time"

	domain "github.com/bryanwahyu/mealsense/internal/domain/analysis"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save inserts an analysis record
func (r *AnalysisRepository) Save(ctx context.Context, a *domain.MealAnalysis) error {
	const q = `
INSERT INTO meal_analyses
  (id, tenant_id, source, input, result_json, archive_url, created_at)
VALUES (?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  result_json=VALUES(result_json), archive_url=VALUES(archive_url);
`
	// Ensure non-nullable fields have safe defaults
	tenant := stringOrDash(a.TenantID)
	source := stringOrDash(string(a.Source))
	result, err := encodeResult(a.Result)
	if err != nil {
		return err
	}
	createdAt := a.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx, q, a.ID, tenant, source, a.Input, result, a.ArchiveURL, createdAt)
	return err
}

// Get returns sql.ErrNoRows when the record does not exist for the tenant.
func (r *AnalysisRepository) Get(ctx context.Context, tenant string, id domain.ID) (*domain.MealAnalysis, error) {
	const q = `
SELECT id, tenant_id, source, input, result_json, archive_url, created_at
FROM meal_analyses
WHERE tenant_id=? AND id=?;`
	return scanOne(r.db.QueryRowContext(ctx, q, tenant, id))
}

// Paginate returns a page of analysis records ordered by created_at desc
func (r *AnalysisRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.MealAnalysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, tenant_id, source, input, result_json, archive_url, created_at
FROM meal_analyses
WHERE tenant_id=?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.MealAnalysis{}
	for rows.Next() {
		a, err := scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row scanner) (*domain.MealAnalysis, error) {
	var a domain.MealAnalysis
	var source, result string
	var created time.Time
	if err := row.Scan(&a.ID, &a.TenantID, &source, &a.Input, &result, &a.ArchiveURL, &created); err != nil {
		return nil, err
	}
	n, err := decodeResult(result)
	if err != nil {
		return nil, err
	}
	a.Source = domain.Source(source)
	a.Result = n
	a.CreatedAt = created
	return &a, nil
}
