package analysis

import "context"

// Repository port for persisting and querying analyses
type Repository interface {
	Save(ctx context.Context, a *MealAnalysis) error
	Get(ctx context.Context, tenant string, id ID) (*MealAnalysis, error)
	Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*MealAnalysis, error)
}

// Archive stores a copy of each normalized record and returns its URL.
type Archive interface {
	PutJSON(ctx context.Context, key string, v any) (string, error)
}
