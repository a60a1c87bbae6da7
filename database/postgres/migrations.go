package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/stowgate/database/internal"
)

// Migrate creates the blob table if it does not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	if !internal.IsValidTableName(tableName) {
		return fmt.Errorf("migrate: invalid table name: %s", tableName)
	}

	quotedTable := pgx.Identifier{tableName}.Sanitize()

	sql := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT PRIMARY KEY,
			data BYTEA NOT NULL,
			size BIGINT NOT NULL,
			modified_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`, quotedTable)

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("migrate %s: create table: %w", tableName, err)
	}
	return nil
}

// DropTable removes the blob table.
func DropTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	if !internal.IsValidTableName(tableName) {
		return fmt.Errorf("drop table: invalid table name: %s", tableName)
	}

	sql := fmt.Sprintf("DROP TABLE IF EXISTS %s", pgx.Identifier{tableName}.Sanitize())
	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("drop table %s: %w", tableName, err)
	}
	return nil
}
