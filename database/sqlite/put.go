package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sagarc03/stowgate/database/internal"
)

// Put inserts or replaces the object stored under key.
func Put(ctx context.Context, db *sql.DB, tableName, key string, data []byte, mtime time.Time) error {
	if !internal.IsValidTableName(tableName) {
		return fmt.Errorf("put: invalid table name: %s", tableName)
	}
	if data == nil {
		data = []byte{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (key, data, size, modified_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			size = excluded.size,
			modified_at = excluded.modified_at
	`, quoteIdentifier(tableName)) //nolint:gosec // G201: table name is validated

	_, err := db.ExecContext(ctx, query, key, data, len(data), mtime.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
