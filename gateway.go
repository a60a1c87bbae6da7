package stowgate

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// DefaultChunkSize is the read size used when Config.ChunkSize is zero.
const DefaultChunkSize = 1 << 20

// StatusClientClosed is recorded when the client disconnects before completion.
const StatusClientClosed = 499

// ResponseHeader is what the gateway emits before any body bytes.
type ResponseHeader struct {
	Status int
	// ContentLength is omitted from the response when negative.
	ContentLength int64
	LastModified  time.Time
	ContentRange  string
	Key           string
}

// Responder is the host transport a request is answered through.
type Responder interface {
	// SendHeader emits the response status and headers. Called at most once, before any chunk.
	SendHeader(h ResponseHeader) error

	// SendChunk emits body bytes in order. p stays valid until the next SendChunk call returns.
	SendChunk(p []byte, last bool) error

	// Finalize ends the request. err is nil on success. Calls after the first are ignored.
	Finalize(status int, err error)

	// Aborted reports whether the client connection is gone.
	Aborted() bool
}

// PoolLookup resolves pool names to live connections.
type PoolLookup interface {
	Lookup(name string) (*PoolConn, error)
}

// Config holds Gateway options.
type Config struct {
	ChunkSize int
	IMSMode   IMSMode
	Clock     Clock
}

// Gateway answers object requests from storage pools.
type Gateway struct {
	pools     PoolLookup
	chunkSize int
	imsMode   IMSMode
	clock     Clock
}

func NewGateway(pools PoolLookup, cfg Config) (*Gateway, error) {
	if pools == nil {
		return nil, fmt.Errorf("new gateway: %w: nil pool lookup", ErrInvalidInput)
	}

	chunkSize := cfg.ChunkSize
	if chunkSize == 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkSize < 0 {
		return nil, fmt.Errorf("new gateway: %w: negative chunk size %d", ErrInvalidInput, chunkSize)
	}

	mode := cfg.IMSMode
	if mode == "" {
		mode = IMSExact
	}
	if !mode.IsValid() {
		return nil, fmt.Errorf("new gateway: %w: if_modified_since mode %q", ErrInvalidInput, mode)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	return &Gateway{
		pools:     pools,
		chunkSize: chunkSize,
		imsMode:   mode,
		clock:     clock,
	}, nil
}

// ChunkSize returns the maximum number of bytes read per storage call.
func (g *Gateway) ChunkSize() int {
	return g.chunkSize
}

// Serve answers req through w. It resolves the key, looks the pool up and runs the
// fetch state machine until the request is finalized. w.Finalize is called exactly
// once on every path.
func (g *Gateway) Serve(ctx context.Context, w Responder, req Request) Result {
	key, err := ResolveKey(req.Path, req.Location.Prefix)
	if err != nil {
		return g.reject(w, Result{}, err)
	}

	conn, err := g.pools.Lookup(req.Location.Pool)
	if err != nil {
		return g.reject(w, Result{Key: key}, fmt.Errorf("serve %s: %w", key, err))
	}

	fc := newFetchContext(g, w, req, key, conn)
	defer fc.release()

	return fc.run(ctx)
}

func (g *Gateway) reject(w Responder, res Result, err error) Result {
	res.Status = StatusFor(err)
	res.Err = err

	if res.Status >= 500 {
		slog.Error("request rejected", "key", res.Key, "status", res.Status, "error", err)
	} else {
		slog.Debug("request rejected", "key", res.Key, "status", res.Status, "error", err)
	}

	w.Finalize(res.Status, err)
	return res
}
