package stowgate_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sagarc03/stowgate"
)

type object struct {
	data  []byte
	mtime time.Time
}

// memIO is an in-memory IOContext.
type memIO struct {
	mu      sync.Mutex
	objects map[string]object
	// readLimit caps how many bytes a single Read returns when positive.
	readLimit int
	statErr   error
	readErr   error
	// failReadAt makes the Read at this offset return readErr.
	failReadAt int64
	// blockStat, when set, makes Stat wait for it to be closed, ignoring ctx.
	blockStat chan struct{}
	reads     []readCall
	destroyed bool
}

type readCall struct {
	off uint64
	n   int
}

func newMemIO() *memIO {
	return &memIO{objects: make(map[string]object), failReadAt: -1}
}

func (m *memIO) put(key string, data string, mtime time.Time) {
	m.objects[key] = object{data: []byte(data), mtime: mtime}
}

func (m *memIO) Stat(ctx context.Context, key string) (stowgate.ObjectInfo, error) {
	if m.blockStat != nil {
		<-m.blockStat
	}
	if m.statErr != nil {
		return stowgate.ObjectInfo{}, m.statErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[key]
	if !ok {
		return stowgate.ObjectInfo{}, fmt.Errorf("stat %s: %w", key, stowgate.ErrNotFound)
	}
	return stowgate.ObjectInfo{Size: uint64(len(obj.data)), ModTime: obj.mtime}, nil
}

func (m *memIO) Read(ctx context.Context, key string, p []byte, off uint64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.reads = append(m.reads, readCall{off: off, n: len(p)})

	if m.readErr != nil && (m.failReadAt < 0 || int64(off) == m.failReadAt) {
		return 0, m.readErr
	}

	obj, ok := m.objects[key]
	if !ok {
		return 0, stowgate.ErrNotFound
	}
	if off >= uint64(len(obj.data)) {
		return 0, nil
	}

	n := copy(p, obj.data[off:])
	if m.readLimit > 0 && n > m.readLimit {
		n = m.readLimit
	}
	return n, nil
}

func (m *memIO) Destroy() {
	m.destroyed = true
}

// staticPools is a PoolLookup over a fixed map.
type staticPools map[string]*stowgate.PoolConn

func (s staticPools) Lookup(name string) (*stowgate.PoolConn, error) {
	conn, ok := s[name]
	if !ok {
		return nil, fmt.Errorf("lookup %q: %w", name, stowgate.ErrPoolNotFound)
	}
	return conn, nil
}

func poolsWith(name string, io stowgate.IOContext) staticPools {
	return staticPools{name: {Name: name, IO: io}}
}

// recorder is a Responder that records everything it is handed.
type recorder struct {
	header      *stowgate.ResponseHeader
	chunks      [][]byte
	lastFlags   []bool
	body        bytes.Buffer
	finalized   int
	status      int
	err         error
	aborted     bool
	headerErr   error
	chunkErr    error
	onChunk     func(n int)
	abortAfterN int
}

func (r *recorder) SendHeader(h stowgate.ResponseHeader) error {
	if r.header != nil {
		return errors.New("header sent twice")
	}
	r.header = &h
	return r.headerErr
}

func (r *recorder) SendChunk(p []byte, last bool) error {
	if r.chunkErr != nil {
		return r.chunkErr
	}
	r.chunks = append(r.chunks, append([]byte(nil), p...))
	r.lastFlags = append(r.lastFlags, last)
	r.body.Write(p)

	if r.onChunk != nil {
		r.onChunk(len(r.chunks))
	}
	if r.abortAfterN > 0 && len(r.chunks) >= r.abortAfterN {
		r.aborted = true
	}
	return nil
}

func (r *recorder) Finalize(status int, err error) {
	r.finalized++
	if r.finalized == 1 {
		r.status = status
		r.err = err
	}
}

func (r *recorder) Aborted() bool {
	return r.aborted
}

// fakeClock hands out timers that fire immediately unless hold is set.
type fakeClock struct {
	mu     sync.Mutex
	hold   bool
	delays []time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	c       chan time.Time
	stopped bool
}

func (t *fakeTimer) C() <-chan time.Time { return t.c }

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

func (c *fakeClock) NewTimer(d time.Duration) stowgate.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{c: make(chan time.Time, 1)}
	if !c.hold {
		t.c <- time.Unix(0, 0).Add(d)
	}
	c.delays = append(c.delays, d)
	c.timers = append(c.timers, t)
	return t
}
