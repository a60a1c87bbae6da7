package stowgate

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Throttle paces a stream by waiting a fixed interval before every chunk after
// the first. The interval assumes full chunks; only the last one may be shorter.
type Throttle struct {
	rate     uint64
	chunkCap int
}

// NewThrottle returns a Throttle delivering chunkCap-sized chunks at rate bytes per
// second. A zero rate disables throttling.
func NewThrottle(rate uint64, chunkCap int) Throttle {
	return Throttle{rate: rate, chunkCap: chunkCap}
}

// Delay returns the wait inserted between consecutive chunks, truncated to whole
// milliseconds. Rates above 1000 chunks per second yield no wait at all.
func (t Throttle) Delay() time.Duration {
	if t.rate == 0 || t.chunkCap <= 0 {
		return 0
	}
	return time.Duration(uint64(t.chunkCap)*1000/t.rate) * time.Millisecond
}

// ParseRate parses a throughput such as "512KiB" or "2MB" into bytes per second.
// An empty string and "0" both disable throttling.
func ParseRate(s string) (uint64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "/s"))
	if s == "" || s == "0" {
		return 0, nil
	}

	rate, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parse rate %q: %w", s, err)
	}
	return rate, nil
}

// Clock creates the timers used between throttled chunks.
type Clock interface {
	NewTimer(d time.Duration) Timer
}

// Timer is the subset of *time.Timer the gateway needs.
type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

// SystemClock is a Clock backed by the time package.
type SystemClock struct{}

func (SystemClock) NewTimer(d time.Duration) Timer {
	return systemTimer{time.NewTimer(d)}
}

type systemTimer struct {
	t *time.Timer
}

func (s systemTimer) C() <-chan time.Time { return s.t.C }

func (s systemTimer) Stop() bool { return s.t.Stop() }
