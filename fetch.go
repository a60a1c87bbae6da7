package stowgate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

type fetchState int

const (
	stateStat fetchState = iota
	stateHeader
	stateStream
	stateDone
)

func (s fetchState) String() string {
	switch s {
	case stateStat:
		return "stat"
	case stateHeader:
		return "header"
	case stateStream:
		return "stream"
	case stateDone:
		return "done"
	default:
		return fmt.Sprintf("fetchState(%d)", int(s))
	}
}

// fetchContext is the mutable state of one in-flight request. Only the goroutine
// running run touches it, and at most one storage operation is outstanding at a time.
type fetchContext struct {
	gw   *Gateway
	w    Responder
	req  Request
	key  string
	conn *PoolConn

	info ObjectInfo
	rng  ByteRange
	// length is the number of body bytes declared in Content-Length.
	length    uint64
	offset    uint64
	delivered uint64
	status    int

	// Two chunk buffers alternate so the chunk just handed to the responder is
	// never the one the next read fills.
	bufs      [2][]byte
	slot      int
	allocated bool

	delay time.Duration
	timer Timer

	state       fetchState
	headersSent bool
	result      Result
	releaseOnce sync.Once
}

func newFetchContext(g *Gateway, w Responder, req Request, key string, conn *PoolConn) *fetchContext {
	return &fetchContext{
		gw:    g,
		w:     w,
		req:   req,
		key:   key,
		conn:  conn,
		delay: NewThrottle(req.Location.Rate, g.chunkSize).Delay(),
		state: stateStat,
	}
}

func (fc *fetchContext) run(ctx context.Context) Result {
	for fc.state != stateDone {
		switch fc.state {
		case stateStat:
			fc.stat(ctx)
		case stateHeader:
			fc.decide()
		case stateStream:
			fc.stream(ctx)
		}
	}
	return fc.result
}

func (fc *fetchContext) stat(ctx context.Context) {
	if fc.w.Aborted() {
		fc.abort(ErrPeerGone)
		return
	}

	op := Start(ctx, func(ctx context.Context) (ObjectInfo, error) {
		return fc.conn.IO.Stat(ctx, fc.key)
	})
	info, err := await(ctx, op)

	switch {
	case errors.Is(err, ErrPeerGone):
		fc.abort(err)
		return
	case err != nil:
		slog.Debug("stat failed", "pool", fc.conn.Name, "key", fc.key, "error", err)
		fc.finish(http.StatusNotFound, fmt.Errorf("stat %s: %w: %w", fc.key, ErrNotFound, err))
		return
	case info.Size == 0 || info.ModTime.IsZero() || info.ModTime.Unix() == 0:
		fc.finish(http.StatusNotFound, fmt.Errorf("stat %s: %w: empty object", fc.key, ErrNotFound))
		return
	}

	fc.info = info
	fc.state = stateHeader
}

func (fc *fetchContext) decide() {
	if fc.req.IfModifiedSince != "" && NotModified(fc.req.IfModifiedSince, fc.info.ModTime, fc.gw.imsMode) {
		fc.finish(http.StatusNotModified, nil)
		return
	}

	switch fc.req.Method {
	case http.MethodHead:
		fc.sendHeader(ResponseHeader{
			Status:        http.StatusOK,
			ContentLength: -1,
			LastModified:  fc.info.ModTime,
			Key:           fc.key,
		})
		if fc.state != stateDone {
			fc.finish(http.StatusOK, nil)
		}
		return
	case http.MethodGet:
	default:
		fc.finish(http.StatusNotImplemented, fmt.Errorf("%s %s: %w", fc.req.Method, fc.key, ErrMethodNotAllowed))
		return
	}

	size := fc.info.Size
	hdr := ResponseHeader{LastModified: fc.info.ModTime, Key: fc.key}

	var rng ByteRange
	var ok bool
	if fc.req.Range != "" {
		rng, ok = ParseRange(fc.req.Range, size)
	}

	switch {
	case !ok || rng.IsZero():
		fc.rng = ByteRange{Start: 0, End: size - 1}
		fc.length = size
		fc.status = http.StatusOK
	case rng.Start >= size || rng.End > size || rng.End < rng.Start:
		fc.finish(http.StatusRequestedRangeNotSatisfiable,
			fmt.Errorf("range %d-%d of %s (size %d): %w", rng.Start, rng.End, fc.key, size, ErrRangeNotSatisfiable))
		return
	default:
		fc.rng = rng
		fc.length = rng.Len()
		fc.status = http.StatusPartialContent
		hdr.ContentRange = rng.ContentRange(size)
	}

	hdr.Status = fc.status
	hdr.ContentLength = int64(fc.length)
	fc.offset = fc.rng.Start
	fc.allocate()

	fc.sendHeader(hdr)
	if fc.state != stateDone {
		fc.state = stateStream
	}
}

func (fc *fetchContext) allocate() {
	if fc.allocated {
		return
	}

	n := uint64(fc.gw.chunkSize)
	if fc.info.Size < n {
		n = fc.info.Size
	}

	fc.bufs[0] = make([]byte, n)
	fc.bufs[1] = make([]byte, n)
	fc.allocated = true
}

func (fc *fetchContext) sendHeader(h ResponseHeader) {
	if err := fc.w.SendHeader(h); err != nil {
		fc.abort(fmt.Errorf("send header: %w: %w", ErrPeerGone, err))
		return
	}
	fc.headersSent = true
}

// stream reads one chunk, hands it to the responder and either finishes or waits
// out the throttle delay before the next call.
func (fc *fetchContext) stream(ctx context.Context) {
	if fc.w.Aborted() {
		fc.abort(ErrPeerGone)
		return
	}

	buf := fc.bufs[fc.slot]
	if remaining := fc.length - fc.delivered; remaining < uint64(len(buf)) {
		buf = buf[:remaining]
	}
	off := fc.offset

	op := Start(ctx, func(ctx context.Context) (int, error) {
		return fc.conn.IO.Read(ctx, fc.key, buf, off)
	})
	n, err := await(ctx, op)

	switch {
	case errors.Is(err, ErrPeerGone):
		fc.abort(err)
		return
	case err != nil:
		fc.fail(fmt.Errorf("read %s at %d: %w", fc.key, off, err))
		return
	case n <= 0 || n > len(buf):
		fc.fail(fmt.Errorf("read %s at %d: %w: short read (%d bytes)", fc.key, off, ErrInternal, n))
		return
	}

	fc.offset += uint64(n)
	fc.delivered += uint64(n)
	last := fc.delivered >= fc.length

	if err := fc.w.SendChunk(buf[:n], last); err != nil {
		fc.abort(fmt.Errorf("send chunk: %w: %w", ErrPeerGone, err))
		return
	}
	fc.slot ^= 1

	if last {
		fc.finish(fc.status, nil)
		return
	}

	if fc.delay > 0 {
		fc.wait(ctx)
	}
}

func (fc *fetchContext) wait(ctx context.Context) {
	fc.timer = fc.gw.clock.NewTimer(fc.delay)

	select {
	case <-fc.timer.C():
		fc.timer = nil
	case <-ctx.Done():
		fc.abort(fmt.Errorf("throttle: %w: %w", ErrPeerGone, context.Cause(ctx)))
	}
}

func (fc *fetchContext) fail(err error) {
	slog.Error("object read failed",
		"pool", fc.conn.Name,
		"key", fc.key,
		"offset", fc.offset,
		"delivered", fc.delivered,
		"error", err,
	)
	fc.finish(http.StatusInternalServerError, err)
}

func (fc *fetchContext) abort(err error) {
	slog.Debug("client went away", "key", fc.key, "state", fc.state, "delivered", fc.delivered)
	fc.finish(StatusClientClosed, err)
}

func (fc *fetchContext) finish(status int, err error) {
	if fc.state == stateDone {
		return
	}
	fc.state = stateDone
	fc.result = Result{Key: fc.key, Status: status, Delivered: fc.delivered, Err: err}
	fc.w.Finalize(status, err)
}

// release frees the context. It runs once, however the request ended.
func (fc *fetchContext) release() {
	fc.releaseOnce.Do(func() {
		if fc.timer != nil {
			fc.timer.Stop()
			fc.timer = nil
		}
		fc.bufs = [2][]byte{}
		fc.allocated = false
	})
}
