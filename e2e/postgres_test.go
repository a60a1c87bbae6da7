package e2e_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/sagarc03/stowgate/database/postgres"
)

var (
	pgOnce    sync.Once
	pgErr     error
	pgDSN     string
	pgPool    *pgxpool.Pool
	pgCleanup = func() {}
)

// startPostgres runs one container shared by every postgres test in the package.
// TestMain terminates it through pgCleanup.
func startPostgres() {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:18-alpine",
		pgcontainer.WithDatabase("stowgate"),
		pgcontainer.WithUsername("stowgate"),
		pgcontainer.WithPassword("stowgate"),
		pgcontainer.BasicWaitStrategies(),
	)
	if err != nil {
		pgErr = fmt.Errorf("start postgres container: %w", err)
		return
	}

	pgCleanup = func() {
		if pgPool != nil {
			pgPool.Close()
		}
		if err := testcontainers.TerminateContainer(container); err != nil {
			fmt.Fprintf(os.Stderr, "terminate postgres container: %v\n", err)
		}
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		pgErr = fmt.Errorf("postgres connection string: %w", err)
		return
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		pgErr = fmt.Errorf("connect postgres: %w", err)
		return
	}

	pgDSN = dsn
	pgPool = pool
}

// getSharedPostgresDatabase returns the DSN of the shared database and a pool
// connected to it, for seeding blob tables directly.
func getSharedPostgresDatabase(t *testing.T) (string, *pgxpool.Pool) {
	t.Helper()

	pgOnce.Do(startPostgres)
	if pgErr != nil {
		t.Fatalf("postgres unavailable: %v", pgErr)
	}
	return pgDSN, pgPool
}

// seedPostgresTable creates table and stores files in it, bypassing the CLI.
func seedPostgresTable(t *testing.T, pool *pgxpool.Pool, table string, files map[string]string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, postgres.Migrate(ctx, pool, table))
	t.Cleanup(func() { _ = postgres.DropTable(context.Background(), pool, table) })

	for key, content := range files {
		require.NoError(t, postgres.Put(ctx, pool, table, key, []byte(content), objectMTime))
	}
}
