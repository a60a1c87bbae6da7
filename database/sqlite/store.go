// Package sqlite serves objects stored as rows of a SQLite blob table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sagarc03/stowgate"
	"github.com/sagarc03/stowgate/database/internal"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store reads objects from one blob table.
type Store struct {
	db        *sql.DB
	tableName string
}

// NewStore returns a Store over tableName. The schema should be validated first.
func NewStore(db *sql.DB, tableName string) (*Store, error) {
	if !internal.IsValidTableName(tableName) {
		return nil, fmt.Errorf("new store: invalid table name: %s", tableName)
	}
	return &Store{db: db, tableName: quoteIdentifier(tableName)}, nil
}

func (s *Store) Stat(ctx context.Context, key string) (stowgate.ObjectInfo, error) {
	query := fmt.Sprintf(`SELECT size, modified_at FROM %s WHERE key = ?`, s.tableName) //nolint:gosec // G201: table name is validated

	var size int64
	var modifiedAt string

	err := s.db.QueryRowContext(ctx, query, key).Scan(&size, &modifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return stowgate.ObjectInfo{}, stowgate.ErrNotFound
		}
		return stowgate.ObjectInfo{}, fmt.Errorf("stat %s: %w", key, err)
	}

	mtime, err := time.Parse(time.RFC3339Nano, modifiedAt)
	if err != nil {
		return stowgate.ObjectInfo{}, fmt.Errorf("stat %s: parse modified_at: %w", key, err)
	}

	if size < 0 {
		size = 0
	}

	return stowgate.ObjectInfo{Size: uint64(size), ModTime: mtime}, nil
}

func (s *Store) Read(ctx context.Context, key string, p []byte, off uint64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	// substr is 1-based.
	query := fmt.Sprintf(`SELECT substr(data, ?, ?) FROM %s WHERE key = ?`, s.tableName) //nolint:gosec // G201: table name is validated

	var chunk []byte
	err := s.db.QueryRowContext(ctx, query, int64(off)+1, len(p), key).Scan(&chunk)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, stowgate.ErrNotFound
		}
		return 0, fmt.Errorf("read %s: %w", key, err)
	}

	return copy(p, chunk), nil
}

// Destroy is a no-op; the connection is owned by the cluster.
func (s *Store) Destroy() {}
