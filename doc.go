// Package stowgate provides an HTTP gateway core for serving objects out of
// storage pools with correct caching and partial-content semantics.
//
// A request path is resolved to an object key, the object is stat'ed in its pool
// and the bytes are streamed back chunk by chunk, never holding a whole object in
// memory.
//
// # Key Components
//
//   - Gateway: per-request fetch state machine (stat, header decision, streaming)
//   - Registry: read-only map of pool name to live PoolConn, built once at startup
//   - Driver, Cluster, IOContext: the storage backend contract (filesystem, s3store,
//     database, rados)
//   - Responder: the host transport a request is answered through (see the http package)
//   - ParseRange, ResolveKey, NotModified: pure request helpers
//   - Throttle: fixed-interval pacing between chunks
//
// # Request Lifecycle
//
// Each request runs an explicit loop over four states:
//
//   - stat: one asynchronous metadata lookup; missing or empty objects answer 404
//   - header: If-Modified-Since (304), HEAD (200, no body), method check (501),
//     Range (206 or 416), then headers are sent before any body byte
//   - stream: one asynchronous read per chunk at the current offset, each chunk
//     handed to the responder in order, optionally paced by a Throttle
//   - done: the responder is finalized exactly once and the context released
//
// A client disconnect at any suspension point (stat, read, throttle timer) ends
// the request without further storage I/O.
//
// # Example Usage
//
//	registry, err := stowgate.NewRegistry(ctx, drivers, []stowgate.PoolConfig{
//	    {Name: "media", Driver: "filesystem", ConfPath: "/etc/stowgate/media.yaml"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer registry.Close()
//
//	gw, err := stowgate.NewGateway(registry, stowgate.Config{IMSMode: stowgate.IMSExact})
//
// See the http package for the net/http transport.
package stowgate
