package stowgate

import "context"

// Driver creates cluster handles for one storage backend.
type Driver interface {
	NewCluster() (Cluster, error)
}

// DriverFunc adapts a function to the Driver interface.
type DriverFunc func() (Cluster, error)

func (f DriverFunc) NewCluster() (Cluster, error) { return f() }

// Cluster is a handle to a storage cluster. A handle is configured from a file,
// connected once and then used to open I/O contexts bound to pools.
type Cluster interface {
	// ReadConfigFile loads connection settings from path.
	ReadConfigFile(path string) error

	// Connect establishes the connection described by the loaded configuration.
	Connect(ctx context.Context) error

	// OpenIOContext opens an I/O context bound to the named pool.
	OpenIOContext(ctx context.Context, pool string) (IOContext, error)

	// Shutdown releases the handle and every resource it owns.
	Shutdown()
}

// IOContext performs object I/O within a single pool.
//
// Implementations must be safe for concurrent use by multiple requests and must
// return an error wrapping ErrNotFound when the key does not exist.
type IOContext interface {
	// Stat returns the size and modification time of key.
	Stat(ctx context.Context, key string) (ObjectInfo, error)

	// Read reads up to len(p) bytes of key starting at off. It returns 0, nil
	// when off is at or past the end of the object.
	Read(ctx context.Context, key string, p []byte, off uint64) (int, error)

	// Destroy releases the context.
	Destroy()
}
