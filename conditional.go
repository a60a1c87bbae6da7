package stowgate

import (
	"fmt"
	"net/http"
	"time"
)

// IMSMode controls how If-Modified-Since is compared with an object's mtime.
type IMSMode string

const (
	// IMSOff ignores If-Modified-Since entirely.
	IMSOff IMSMode = "off"
	// IMSExact answers 304 only when the times match exactly.
	IMSExact IMSMode = "exact"
	// IMSBefore answers 304 when the object is not newer than the given time.
	IMSBefore IMSMode = "before"
)

func (m IMSMode) IsValid() bool {
	switch m {
	case IMSOff, IMSExact, IMSBefore:
		return true
	default:
		return false
	}
}

func ParseIMSMode(s string) (IMSMode, error) {
	mode := IMSMode(s)
	if !mode.IsValid() {
		return "", fmt.Errorf("invalid if_modified_since mode: %s (valid modes: off, exact, before)", s)
	}
	return mode, nil
}

// NotModified reports whether a conditional request carrying header as its
// If-Modified-Since value should be answered with 304. Comparison is at second
// resolution; an unparseable date never matches.
func NotModified(header string, mtime time.Time, mode IMSMode) bool {
	if mode == IMSOff || header == "" {
		return false
	}

	ims, err := http.ParseTime(header)
	if err != nil {
		return false
	}

	if ims.Unix() == mtime.Unix() {
		return true
	}

	if mode == IMSExact || ims.Unix() < mtime.Unix() {
		return false
	}

	return true
}
