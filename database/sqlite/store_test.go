package sqlite_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sagarc03/stowgate"
	"github.com/sagarc03/stowgate/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*sqlite.Store, string, func(key string, data []byte, mtime time.Time)) {
	t.Helper()
	ctx := context.Background()

	db := openTestDB(t)
	table := fmt.Sprintf("blobs_%s", getRandomString(t))

	require.NoError(t, sqlite.Migrate(ctx, db, table))
	require.NoError(t, sqlite.ValidateSchema(ctx, db, table))

	store, err := sqlite.NewStore(db, table)
	require.NoError(t, err)

	insert := func(key string, data []byte, mtime time.Time) {
		insertObject(t, db, table, key, data, mtime)
	}
	return store, table, insert
}

func TestStore_Stat(t *testing.T) {
	t.Parallel()

	store, _, insert := setupStore(t)
	mtime := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	insert("docs/readme.txt", []byte("hello sqlite"), mtime)

	info, err := store.Stat(context.Background(), "docs/readme.txt")

	require.NoError(t, err)
	assert.Equal(t, uint64(12), info.Size)
	assert.True(t, info.ModTime.Equal(mtime))
}

func TestStore_Stat_NotFound(t *testing.T) {
	t.Parallel()

	store, _, _ := setupStore(t)

	_, err := store.Stat(context.Background(), "missing")

	assert.ErrorIs(t, err, stowgate.ErrNotFound)
}

func TestStore_Read(t *testing.T) {
	t.Parallel()

	store, _, insert := setupStore(t)
	insert("data.bin", []byte("0123456789"), time.Now())

	tests := []struct {
		name string
		off  uint64
		size int
		want string
	}{
		{name: "from start", off: 0, size: 4, want: "0123"},
		{name: "middle", off: 4, size: 3, want: "456"},
		{name: "short tail", off: 7, size: 5, want: "789"},
		{name: "past end", off: 10, size: 4, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := make([]byte, tt.size)

			n, err := store.Read(context.Background(), "data.bin", p, tt.off)

			require.NoError(t, err)
			assert.Equal(t, tt.want, string(p[:n]))
		})
	}
}

func TestStore_Read_NotFound(t *testing.T) {
	t.Parallel()

	store, _, _ := setupStore(t)

	_, err := store.Read(context.Background(), "missing", make([]byte, 4), 0)

	assert.ErrorIs(t, err, stowgate.ErrNotFound)
}

func TestNewStore_InvalidTableName(t *testing.T) {
	t.Parallel()

	_, err := sqlite.NewStore(openTestDB(t), "Bad-Name")

	assert.Error(t, err)
}

func TestValidateSchema_MissingTable(t *testing.T) {
	t.Parallel()

	err := sqlite.ValidateSchema(context.Background(), openTestDB(t), "nope")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidateSchema_WrongColumns(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := openTestDB(t)
	_, err := db.ExecContext(ctx, `CREATE TABLE "legacy" (key TEXT NOT NULL PRIMARY KEY, data TEXT NOT NULL)`)
	require.NoError(t, err)

	err = sqlite.ValidateSchema(ctx, db, "legacy")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing columns: modified_at, size")
	assert.Contains(t, err.Error(), "data: expected blob, got text")
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db := openTestDB(t)

	require.NoError(t, sqlite.Migrate(ctx, db, "blobs"))
	require.NoError(t, sqlite.Migrate(ctx, db, "blobs"))
	require.NoError(t, sqlite.ValidateSchema(ctx, db, "blobs"))

	require.NoError(t, sqlite.DropTable(ctx, db, "blobs"))
	assert.Error(t, sqlite.ValidateSchema(ctx, db, "blobs"))
}
