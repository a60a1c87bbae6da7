package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gopkg.in/yaml.v3"

	"github.com/sagarc03/stowgate"
	"github.com/sagarc03/stowgate/database/postgres"
	"github.com/sagarc03/stowgate/database/sqlite"

	_ "modernc.org/sqlite" // SQLite driver
)

// Config is the cluster configuration file format.
type Config struct {
	// Type specifies the database type: "sqlite" or "postgres"
	Type string `yaml:"type"`
	// DSN is the data source name (connection string)
	DSN string `yaml:"dsn"`
	// AutoMigrate creates missing blob tables when a pool is opened.
	AutoMigrate bool `yaml:"auto_migrate"`
}

// Driver creates database cluster handles.
type Driver struct{}

func (Driver) NewCluster() (stowgate.Cluster, error) {
	return &Cluster{}, nil
}

// Cluster is a connection to one database. Each pool is a blob table in it.
type Cluster struct {
	cfg    Config
	loaded bool

	sqlDB  *sql.DB
	pgPool *pgxpool.Pool
}

// ReadConfigFile loads the YAML configuration at path.
func (c *Cluster) ReadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	switch cfg.Type {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("parse config %s: unsupported database type: %q", path, cfg.Type)
	}

	if cfg.DSN == "" {
		return fmt.Errorf("parse config %s: dsn cannot be empty", path)
	}

	c.cfg = cfg
	c.loaded = true
	return nil
}

// Connect opens and pings the database.
func (c *Cluster) Connect(ctx context.Context) error {
	if !c.loaded {
		return errors.New("connect: no configuration loaded")
	}

	switch c.cfg.Type {
	case "sqlite":
		return c.connectSQLite(ctx)
	case "postgres":
		return c.connectPostgres(ctx)
	default:
		return fmt.Errorf("connect: unsupported database type: %s", c.cfg.Type)
	}
}

func (c *Cluster) connectSQLite(ctx context.Context) error {
	db, err := sql.Open("sqlite", c.cfg.DSN)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if strings.Contains(c.cfg.DSN, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("ping sqlite: %w", err)
	}

	c.sqlDB = db
	return nil
}

func (c *Cluster) connectPostgres(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, c.cfg.DSN)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping postgres: %w", err)
	}

	c.pgPool = pool
	return nil
}

// OpenIOContext migrates (when enabled) and validates the blob table named pool.
func (c *Cluster) OpenIOContext(ctx context.Context, pool string) (stowgate.IOContext, error) {
	switch {
	case c.sqlDB != nil:
		return c.openSQLite(ctx, pool)
	case c.pgPool != nil:
		return c.openPostgres(ctx, pool)
	default:
		return nil, errors.New("open io context: not connected")
	}
}

func (c *Cluster) openSQLite(ctx context.Context, table string) (stowgate.IOContext, error) {
	if c.cfg.AutoMigrate {
		if err := sqlite.Migrate(ctx, c.sqlDB, table); err != nil {
			return nil, fmt.Errorf("migrate sqlite: %w", err)
		}
	}

	if err := sqlite.ValidateSchema(ctx, c.sqlDB, table); err != nil {
		return nil, fmt.Errorf("validate sqlite schema: %w", err)
	}

	store, err := sqlite.NewStore(c.sqlDB, table)
	if err != nil {
		return nil, fmt.Errorf("create sqlite store: %w", err)
	}
	return store, nil
}

func (c *Cluster) openPostgres(ctx context.Context, table string) (stowgate.IOContext, error) {
	if c.cfg.AutoMigrate {
		if err := postgres.Migrate(ctx, c.pgPool, table); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
	}

	if err := postgres.ValidateSchema(ctx, c.pgPool, table); err != nil {
		return nil, fmt.Errorf("validate postgres schema: %w", err)
	}

	store, err := postgres.NewStore(c.pgPool, table)
	if err != nil {
		return nil, fmt.Errorf("create postgres store: %w", err)
	}
	return store, nil
}

// Shutdown closes the database connection.
func (c *Cluster) Shutdown() {
	if c.sqlDB != nil {
		_ = c.sqlDB.Close()
		c.sqlDB = nil
	}
	if c.pgPool != nil {
		c.pgPool.Close()
		c.pgPool = nil
	}
}

// DB returns the SQLite handle, or nil for other database types.
func (c *Cluster) DB() *sql.DB {
	return c.sqlDB
}

// Migrate creates the blob table for pool if it does not exist.
func (c *Cluster) Migrate(ctx context.Context, pool string) error {
	switch {
	case c.sqlDB != nil:
		return sqlite.Migrate(ctx, c.sqlDB, pool)
	case c.pgPool != nil:
		return postgres.Migrate(ctx, c.pgPool, pool)
	default:
		return errors.New("migrate: not connected")
	}
}

// Put stores data under key in the blob table for pool, replacing any previous
// object.
func (c *Cluster) Put(ctx context.Context, pool, key string, data []byte, mtime time.Time) error {
	switch {
	case c.sqlDB != nil:
		return sqlite.Put(ctx, c.sqlDB, pool, key, data, mtime)
	case c.pgPool != nil:
		return postgres.Put(ctx, c.pgPool, pool, key, data, mtime)
	default:
		return errors.New("put: not connected")
	}
}
