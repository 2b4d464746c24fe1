package mysql

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"

	"github.com/bryanwahyu/mealsense/internal/infra/db"
)

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	return db.Open(ctx, "mysql", dsn)
}
