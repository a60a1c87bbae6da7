package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/stowgate/database/internal"
)

// Put inserts or replaces the object stored under key.
func Put(ctx context.Context, pool *pgxpool.Pool, tableName, key string, data []byte, mtime time.Time) error {
	if !internal.IsValidTableName(tableName) {
		return fmt.Errorf("put: invalid table name: %s", tableName)
	}
	if data == nil {
		data = []byte{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (key, data, size, modified_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE SET
			data = EXCLUDED.data,
			size = EXCLUDED.size,
			modified_at = EXCLUDED.modified_at
	`, pgx.Identifier{tableName}.Sanitize())

	if _, err := pool.Exec(ctx, query, key, data, int64(len(data)), mtime); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
