package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sagarc03/stowgate/database/internal"
)

// quoteIdentifier safely quotes a SQLite identifier
func quoteIdentifier(name string) string {
	return `"` + name + `"`
}

// Migrate creates the blob table if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB, tableName string) error {
	if !internal.IsValidTableName(tableName) {
		return fmt.Errorf("migrate: invalid table name: %s", tableName)
	}

	createTableSQL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key TEXT NOT NULL PRIMARY KEY,
			data BLOB NOT NULL,
			size INTEGER NOT NULL,
			modified_at TEXT NOT NULL
		)
	`, quoteIdentifier(tableName))

	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("migrate %s: create table: %w", tableName, err)
	}

	return nil
}

// DropTable removes the blob table.
func DropTable(ctx context.Context, db *sql.DB, tableName string) error {
	if !internal.IsValidTableName(tableName) {
		return fmt.Errorf("drop table: invalid table name: %s", tableName)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(tableName))); err != nil {
		return fmt.Errorf("drop table %s: %w", tableName, err)
	}
	return nil
}
