package stowgate

import (
	"fmt"
	"time"
)

// ObjectInfo is the metadata returned by a stat against a pool.
type ObjectInfo struct {
	Size    uint64
	ModTime time.Time
}

// ByteRange is an inclusive byte interval within an object.
type ByteRange struct {
	Start uint64
	End   uint64
}

// Len returns the number of bytes covered by the range.
func (r ByteRange) Len() uint64 {
	return r.End - r.Start + 1
}

// IsZero reports whether r is the "no range" sentinel.
func (r ByteRange) IsZero() bool {
	return r.Start == 0 && r.End == 0
}

// ContentRange formats r as a Content-Range header value for an object of the given size.
func (r ByteRange) ContentRange(size uint64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.Start, r.End, size)
}

// Location binds a URL prefix to a storage pool.
type Location struct {
	Prefix string
	Pool   string
	// Rate caps delivered throughput in bytes per second. Zero disables throttling.
	Rate uint64
}

// Request is what the host hands to the gateway for a single HTTP request.
type Request struct {
	Method          string
	Path            string // escaped request path, decoded by ResolveKey
	IfModifiedSince string
	Range           string
	Location        Location
}

// Result summarizes how a request terminated.
type Result struct {
	Key       string
	Status    int
	Delivered uint64
	Err       error
}
