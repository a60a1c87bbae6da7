package http

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strconv"

	"github.com/sagarc03/stowgate"
)

// responder adapts an http.ResponseWriter to stowgate.Responder.
type responder struct {
	w  http.ResponseWriter
	r  *http.Request
	rc *http.ResponseController

	headerSent bool
	finalized  bool
	// broken is set when a failure happens after headers went out; the only
	// honest answer then is to drop the connection.
	broken bool
}

func newResponder(w http.ResponseWriter, r *http.Request) *responder {
	return &responder{w: w, r: r, rc: http.NewResponseController(w)}
}

func (rw *responder) SendHeader(h stowgate.ResponseHeader) error {
	if rw.headerSent {
		return errors.New("send header: headers already sent")
	}

	hdr := rw.w.Header()
	if !h.LastModified.IsZero() {
		hdr.Set("Last-Modified", h.LastModified.UTC().Format(http.TimeFormat))
	}
	if h.ContentLength >= 0 {
		hdr.Set("Content-Length", strconv.FormatInt(h.ContentLength, 10))
	}
	if h.ContentRange != "" {
		hdr.Set("Content-Range", h.ContentRange)
	}
	if hdr.Get("Content-Type") == "" {
		hdr.Set("Content-Type", detectContentType(h.Key))
	}

	rw.w.WriteHeader(h.Status)
	rw.headerSent = true

	if err := rw.flush(); err != nil {
		return fmt.Errorf("send header: %w", err)
	}
	return nil
}

func (rw *responder) SendChunk(p []byte, last bool) error {
	if _, err := rw.w.Write(p); err != nil {
		return fmt.Errorf("send chunk: %w", err)
	}
	if err := rw.flush(); err != nil {
		return fmt.Errorf("send chunk: %w", err)
	}
	return nil
}

func (rw *responder) Finalize(status int, err error) {
	if rw.finalized {
		return
	}
	rw.finalized = true

	switch {
	case errors.Is(err, stowgate.ErrPeerGone):
	case err != nil && rw.headerSent:
		rw.broken = true
	case err != nil:
		WriteError(rw.w, status)
	case !rw.headerSent:
		rw.w.WriteHeader(status)
	}
}

func (rw *responder) Aborted() bool {
	return rw.r.Context().Err() != nil
}

func (rw *responder) flush() error {
	err := rw.rc.Flush()
	if errors.Is(err, http.ErrNotSupported) {
		return nil
	}
	return err
}

func detectContentType(key string) string {
	contentType := mime.TypeByExtension(path.Ext(key))

	if contentType == "" {
		return "application/octet-stream"
	}

	return contentType
}
