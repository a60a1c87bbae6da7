package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/stowgate/database/postgres"
)

func TestPut(t *testing.T) {
	ctx := context.Background()

	pool := getSharedTestDatabase(t)
	table := fmt.Sprintf("blobs_%s", getRandomString(t))

	require.NoError(t, postgres.Migrate(ctx, pool, table))
	t.Cleanup(func() { _ = postgres.DropTable(context.Background(), pool, table) })

	store, err := postgres.NewStore(pool, table)
	require.NoError(t, err)

	first := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, postgres.Put(ctx, pool, table, "a.txt", []byte("first"), first))
	require.NoError(t, postgres.Put(ctx, pool, table, "a.txt", []byte("replaced"), first.Add(time.Hour)))

	info, err := store.Stat(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, uint64(8), info.Size)
	assert.True(t, first.Add(time.Hour).Equal(info.ModTime))

	p := make([]byte, 16)
	n, err := store.Read(ctx, "a.txt", p, 0)
	require.NoError(t, err)
	assert.Equal(t, "replaced", string(p[:n]))
}
