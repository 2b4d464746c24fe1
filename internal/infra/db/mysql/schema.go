package mysql

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS meal_analyses (
  id          VARCHAR(64)  NOT NULL PRIMARY KEY,
  tenant_id   VARCHAR(64)  NOT NULL,
  source      VARCHAR(16)  NOT NULL,
  input       TEXT         NOT NULL,
  result_json JSON         NOT NULL,
  archive_url VARCHAR(512) NOT NULL DEFAULT '',
  created_at  DATETIME(3)  NOT NULL,
  KEY idx_meal_analyses_tenant_created (tenant_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

// EnsureSchema creates the tables the repository needs.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
