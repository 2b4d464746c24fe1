package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	domain "github.com/bryanwahyu/mealsense/internal/domain/analysis"
)

// AnalysisRepository keeps analyses in process memory. Used when no database is
// configured and in tests.
type AnalysisRepository struct {
	mu   sync.RWMutex
	rows map[domain.ID]domain.MealAnalysis
}

func NewAnalysisRepository() *AnalysisRepository {
	return &AnalysisRepository{rows: make(map[domain.ID]domain.MealAnalysis)}
}

func (r *AnalysisRepository) Save(ctx context.Context, a *domain.MealAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[a.ID] = *a
	return nil
}

func (r *AnalysisRepository) Get(ctx context.Context, tenant string, id domain.ID) (*domain.MealAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.rows[id]
	if !ok || a.TenantID != tenant {
		return nil, sql.ErrNoRows
	}
	return &a, nil
}

func (r *AnalysisRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.MealAnalysis, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	r.mu.RLock()
	list := make([]domain.MealAnalysis, 0, len(r.rows))
	for _, a := range r.rows {
		if a.TenantID == tenant {
			list = append(list, a)
		}
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	out := []*domain.MealAnalysis{}
	start := (page - 1) * pageSize
	for i := start; i < len(list) && i < start+pageSize; i++ {
		a := list[i]
		out = append(out, &a)
	}
	return out, nil
}
