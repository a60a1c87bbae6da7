// Package filesystem provides a local directory storage driver for stowgate.
// The cluster root is a directory; every pool is a sub-directory of it and every
// object a regular file inside the pool. All access goes through os.Root, so keys
// cannot escape their pool.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sagarc03/stowgate"
)

// Config is the cluster configuration file format:
//
//	root: /srv/objects
type Config struct {
	Root string `yaml:"root"`
}

// Driver creates filesystem cluster handles.
type Driver struct{}

func (Driver) NewCluster() (stowgate.Cluster, error) {
	return &Cluster{}, nil
}

// Cluster is a handle on a root directory.
type Cluster struct {
	cfg  Config
	root *os.Root
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

	if cfg.Root == "" {
		return fmt.Errorf("parse config %s: root cannot be empty", path)
	}

	c.cfg = cfg
	return nil
}

// Connect opens the root directory.
func (c *Cluster) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if c.cfg.Root == "" {
		return errors.New("connect: no configuration loaded")
	}

	root, err := os.OpenRoot(c.cfg.Root)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	c.root = root
	return nil
}

// OpenIOContext opens the pool sub-directory.
func (c *Cluster) OpenIOContext(ctx context.Context, pool string) (stowgate.IOContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if c.root == nil {
		return nil, errors.New("open io context: not connected")
	}

	poolRoot, err := c.root.OpenRoot(pool)
	if err != nil {
		return nil, fmt.Errorf("open io context %s: %w", pool, err)
	}

	return NewStore(poolRoot), nil
}

// Shutdown closes the root directory.
func (c *Cluster) Shutdown() {
	if c.root == nil {
		return
	}
	if err := c.root.Close(); err != nil {
		slog.Warn("failed to close storage root", "root", c.cfg.Root, "err", err)
	}
	c.root = nil
}

// Store serves objects from one pool directory.
type Store struct {
	root *os.Root
}

// NewStore creates a Store on the given pool root.
func NewStore(root *os.Root) *Store {
	return &Store{root: root}
}

// Stat returns the size and modification time of key. Directories are reported as
// not found.
func (s *Store) Stat(ctx context.Context, key string) (stowgate.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return stowgate.ObjectInfo{}, err
	}

	info, err := s.root.Stat(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return stowgate.ObjectInfo{}, stowgate.ErrNotFound
		}
		return stowgate.ObjectInfo{}, fmt.Errorf("stat %s: %w", key, err)
	}

	if !info.Mode().IsRegular() {
		return stowgate.ObjectInfo{}, fmt.Errorf("stat %s: %w: not a regular file", key, stowgate.ErrNotFound)
	}

	return stowgate.ObjectInfo{Size: uint64(info.Size()), ModTime: info.ModTime()}, nil
}

// Read reads up to len(p) bytes of key at off.
func (s *Store) Read(ctx context.Context, key string, p []byte, off uint64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	f, err := s.root.Open(key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, stowgate.ErrNotFound
		}
		return 0, fmt.Errorf("open %s: %w", key, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("failed to close file", "key", key, "err", closeErr)
		}
	}()

	n, err := f.ReadAt(p, int64(off))
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("read %s: %w", key, err)
	}

	return n, nil
}

// Destroy closes the pool directory.
func (s *Store) Destroy() {
	if err := s.root.Close(); err != nil {
		slog.Warn("failed to close pool root", "err", err)
	}
}
