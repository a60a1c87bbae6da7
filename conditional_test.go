package stowgate_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/stowgate"
)

func TestNotModified(t *testing.T) {
	t.Parallel()

	mtime := time.Date(2024, 3, 15, 10, 30, 0, 500_000_000, time.UTC)
	same := mtime.Format(http.TimeFormat)
	later := mtime.Add(time.Minute).Format(http.TimeFormat)
	earlier := mtime.Add(-time.Minute).Format(http.TimeFormat)

	tests := []struct {
		name   string
		header string
		mode   stowgate.IMSMode
		want   bool
	}{
		{name: "exact same second", header: same, mode: stowgate.IMSExact, want: true},
		{name: "exact later", header: later, mode: stowgate.IMSExact, want: false},
		{name: "exact earlier", header: earlier, mode: stowgate.IMSExact, want: false},
		{name: "before same second", header: same, mode: stowgate.IMSBefore, want: true},
		{name: "before later", header: later, mode: stowgate.IMSBefore, want: true},
		{name: "before earlier", header: earlier, mode: stowgate.IMSBefore, want: false},
		{name: "off", header: same, mode: stowgate.IMSOff, want: false},
		{name: "empty header", header: "", mode: stowgate.IMSExact, want: false},
		{name: "garbage", header: "not a date", mode: stowgate.IMSBefore, want: false},
		{name: "rfc850", header: mtime.Format(time.RFC850), mode: stowgate.IMSExact, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, stowgate.NotModified(tt.header, mtime, tt.mode))
		})
	}
}

func TestParseIMSMode(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"off", "exact", "before"} {
		mode, err := stowgate.ParseIMSMode(s)
		require.NoError(t, err)
		assert.Equal(t, stowgate.IMSMode(s), mode)
	}

	_, err := stowgate.ParseIMSMode("after")
	assert.Error(t, err)
}
