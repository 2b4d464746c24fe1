package postgres

import (
	"context"
	"database/sql"
)

const schema = `
CREATE TABLE IF NOT EXISTS meal_analyses (
  id          TEXT        PRIMARY KEY,
  tenant_id   TEXT        NOT NULL,
  source      TEXT        NOT NULL,
  input       TEXT        NOT NULL,
  result_json JSONB       NOT NULL,
  archive_url TEXT        NOT NULL DEFAULT '',
  created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_meal_analyses_tenant_created ON meal_analyses (tenant_id, created_at DESC);`

// EnsureSchema creates the tables the repository needs.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
