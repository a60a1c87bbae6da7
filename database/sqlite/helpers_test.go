package sqlite_test

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func getRandomString(t *testing.T) string {
	t.Helper()
	n, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	require.NoError(t, err, "random string")
	return fmt.Sprintf("test%x", n.Int64())
}

// openTestDB opens a private in-memory database. A single connection keeps every
// query on the same in-memory instance.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err, "failed to open")
	db.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = db.Close() })

	return db
}

func insertObject(t *testing.T, db *sql.DB, table, key string, data []byte, mtime time.Time) {
	t.Helper()

	query := fmt.Sprintf(`INSERT INTO "%s" (key, data, size, modified_at) VALUES (?, ?, ?, ?)`, table)
	_, err := db.ExecContext(context.Background(), query, key, data, len(data), mtime.UTC().Format(time.RFC3339Nano))
	require.NoError(t, err, "insert object")
}
