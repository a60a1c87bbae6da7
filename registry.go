package stowgate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// PoolConfig names a pool and tells the registry how to reach it.
type PoolConfig struct {
	Name     string
	Driver   string
	ConfPath string
}

// PoolConn is a live binding to one storage pool.
type PoolConn struct {
	Name    string
	Cluster Cluster
	IO      IOContext
}

// Registry holds one PoolConn per configured pool name. It is built once at
// startup and is read-only afterwards, so lookups need no locking.
type Registry struct {
	pools     map[string]*PoolConn
	order     []string
	closeOnce sync.Once
}

// NewRegistry opens a connection for every distinct pool name in pools. Entries
// repeating a name reuse the first connection and must name the same driver and
// configuration file. On any failure the pools opened so far are closed and the
// error is returned.
func NewRegistry(ctx context.Context, drivers map[string]Driver, pools []PoolConfig) (*Registry, error) {
	r := &Registry{pools: make(map[string]*PoolConn, len(pools))}
	opened := make(map[string]PoolConfig, len(pools))

	for _, pc := range pools {
		if first, ok := opened[pc.Name]; ok {
			if first.Driver != pc.Driver || first.ConfPath != pc.ConfPath {
				r.Close()
				return nil, fmt.Errorf("new registry: %w", conflictError(first, pc))
			}
			slog.Debug("pool already connected", "pool", pc.Name)
			continue
		}

		conn, err := openPool(ctx, drivers, pc)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("new registry: %w", err)
		}

		r.pools[pc.Name] = conn
		r.order = append(r.order, pc.Name)
		opened[pc.Name] = pc
	}

	return r, nil
}

func conflictError(first, other PoolConfig) error {
	return fmt.Errorf("%w: pool %s is bound to driver %q with conf %s and to driver %q with conf %s",
		ErrPoolConflict, first.Name, first.Driver, first.ConfPath, other.Driver, other.ConfPath)
}

func openPool(ctx context.Context, drivers map[string]Driver, pc PoolConfig) (*PoolConn, error) {
	if pc.Name == "" {
		return nil, errors.New("open pool: empty pool name")
	}

	driver, ok := drivers[pc.Driver]
	if !ok {
		return nil, fmt.Errorf("open pool %s: unknown driver %q", pc.Name, pc.Driver)
	}

	slog.Debug("creating cluster handle", "pool", pc.Name, "driver", pc.Driver)
	cluster, err := driver.NewCluster()
	if err != nil {
		return nil, fmt.Errorf("open pool %s: create cluster handle: %w", pc.Name, err)
	}

	slog.Debug("reading cluster config", "pool", pc.Name, "conf", pc.ConfPath)
	if err := cluster.ReadConfigFile(pc.ConfPath); err != nil {
		cluster.Shutdown()
		return nil, fmt.Errorf("open pool %s: load cluster config %s: %w", pc.Name, pc.ConfPath, err)
	}

	slog.Debug("connecting cluster", "pool", pc.Name)
	if err := cluster.Connect(ctx); err != nil {
		cluster.Shutdown()
		return nil, fmt.Errorf("open pool %s: connect cluster: %w", pc.Name, err)
	}

	slog.Debug("opening io context", "pool", pc.Name)
	io, err := cluster.OpenIOContext(ctx, pc.Name)
	if err != nil {
		cluster.Shutdown()
		return nil, fmt.Errorf("open pool %s: open io context: %w", pc.Name, err)
	}

	return &PoolConn{Name: pc.Name, Cluster: cluster, IO: io}, nil
}

// Lookup returns the connection for the named pool.
func (r *Registry) Lookup(name string) (*PoolConn, error) {
	conn, ok := r.pools[name]
	if !ok {
		return nil, fmt.Errorf("lookup %q: %w", name, ErrPoolNotFound)
	}
	return conn, nil
}

// Pools returns the connected pool names in the order they were opened.
func (r *Registry) Pools() []string {
	return append([]string(nil), r.order...)
}

// Close destroys every I/O context and shuts every cluster handle down.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		for i := len(r.order) - 1; i >= 0; i-- {
			conn := r.pools[r.order[i]]
			conn.IO.Destroy()
			conn.Cluster.Shutdown()
		}
	})
}
