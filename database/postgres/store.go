// Package postgres serves objects stored as rows of a PostgreSQL blob table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/stowgate"
	"github.com/sagarc03/stowgate/database/internal"
)

// Store reads objects from one blob table.
type Store struct {
	pool      *pgxpool.Pool
	tableName string
}

// NewStore returns a Store over tableName. The schema should be validated first.
func NewStore(pool *pgxpool.Pool, tableName string) (*Store, error) {
	if !internal.IsValidTableName(tableName) {
		return nil, fmt.Errorf("new store: invalid table name: %s", tableName)
	}
	return &Store{pool: pool, tableName: pgx.Identifier{tableName}.Sanitize()}, nil
}

func (s *Store) Stat(ctx context.Context, key string) (stowgate.ObjectInfo, error) {
	query := fmt.Sprintf(`SELECT size, modified_at FROM %s WHERE key = $1`, s.tableName) //nolint:gosec // G201: table name is sanitized

	var size int64
	var mtime time.Time

	err := s.pool.QueryRow(ctx, query, key).Scan(&size, &mtime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return stowgate.ObjectInfo{}, stowgate.ErrNotFound
		}
		return stowgate.ObjectInfo{}, fmt.Errorf("stat %s: %w", key, err)
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

	// substring positions are 1-based.
	query := fmt.Sprintf(`SELECT substring(data FROM $1 FOR $2) FROM %s WHERE key = $3`, s.tableName) //nolint:gosec // G201: table name is sanitized

	var chunk []byte
	err := s.pool.QueryRow(ctx, query, int64(off)+1, int64(len(p)), key).Scan(&chunk)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, stowgate.ErrNotFound
		}
		return 0, fmt.Errorf("read %s: %w", key, err)
	}

	return copy(p, chunk), nil
}

// Destroy is a no-op; the pool is owned by the cluster.
func (s *Store) Destroy() {}
