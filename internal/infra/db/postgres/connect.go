package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/bryanwahyu/mealsense/internal/infra/db"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	return db.Open(ctx, "postgres", dsn)
}
