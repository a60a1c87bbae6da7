//go:build ceph

// Package rados provides a Ceph RADOS storage driver for stowgate. It needs cgo
// and librados, so it is only compiled with the ceph build tag.
package rados

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ceph/go-ceph/rados"

	"github.com/sagarc03/stowgate"
)

// Driver creates RADOS cluster handles. The cluster configuration file is a
// regular ceph.conf.
type Driver struct{}

func (Driver) NewCluster() (stowgate.Cluster, error) {
	conn, err := rados.NewConn()
	if err != nil {
		return nil, fmt.Errorf("new cluster: %w", err)
	}
	return &Cluster{conn: conn}, nil
}

// Cluster wraps a RADOS connection.
type Cluster struct {
	conn      *rados.Conn
	connected bool
}

func (c *Cluster) ReadConfigFile(path string) error {
	slog.Debug("rados.ReadConfigFile", "path", path)
	if err := c.conn.ReadConfigFile(path); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Connect connects to the cluster. librados does not take a context, so ctx is
// only checked before the call.
func (c *Cluster) Connect(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	slog.Debug("rados.Connect")
	if err := c.conn.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	c.connected = true
	return nil
}

func (c *Cluster) OpenIOContext(ctx context.Context, pool string) (stowgate.IOContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Debug("rados.OpenIOContext", "pool", pool)
	ioctx, err := c.conn.OpenIOContext(pool)
	if err != nil {
		return nil, fmt.Errorf("open io context %s: %w", pool, err)
	}

	return &Store{ioctx: ioctx}, nil
}

// Shutdown disconnects from the cluster. A handle that never connected has
// nothing to shut down.
func (c *Cluster) Shutdown() {
	if c.connected {
		c.conn.Shutdown()
		c.connected = false
	}
}

// Store reads objects from one RADOS pool.
type Store struct {
	ioctx *rados.IOContext
}

func (s *Store) Stat(_ context.Context, key string) (stowgate.ObjectInfo, error) {
	st, err := s.ioctx.Stat(key)
	if err != nil {
		if errors.Is(err, rados.ErrNotFound) {
			return stowgate.ObjectInfo{}, fmt.Errorf("stat %s: %w", key, stowgate.ErrNotFound)
		}
		return stowgate.ObjectInfo{}, fmt.Errorf("stat %s: %w", key, err)
	}

	return stowgate.ObjectInfo{Size: st.Size, ModTime: st.ModTime}, nil
}

func (s *Store) Read(_ context.Context, key string, p []byte, off uint64) (int, error) {
	n, err := s.ioctx.Read(key, p, off)
	if err != nil {
		if errors.Is(err, rados.ErrNotFound) {
			return 0, fmt.Errorf("read %s: %w", key, stowgate.ErrNotFound)
		}
		return 0, fmt.Errorf("read %s at %d: %w", key, off, err)
	}
	return n, nil
}

func (s *Store) Destroy() {
	s.ioctx.Destroy()
}
