package stowgate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sagarc03/stowgate"
)

func TestParseRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		size   uint64
		want   stowgate.ByteRange
		ok     bool
	}{
		{name: "closed", header: "bytes=0-499", size: 1000, want: stowgate.ByteRange{Start: 0, End: 499}, ok: true},
		{name: "open end", header: "bytes=500-", size: 1000, want: stowgate.ByteRange{Start: 500, End: 999}, ok: true},
		{name: "leading dash", header: "bytes=-200", size: 1000, want: stowgate.ByteRange{Start: 0, End: 200}, ok: true},
		{name: "bare dash", header: "bytes=-", size: 1000, want: stowgate.ByteRange{Start: 0, End: 999}, ok: true},
		{name: "comma ends first range", header: "bytes=0-1,5-9", size: 10, want: stowgate.ByteRange{Start: 0, End: 1}, ok: true},
		{name: "ampersand ends first range", header: "bytes=2-3&x", size: 10, want: stowgate.ByteRange{Start: 2, End: 3}, ok: true},
		{name: "semicolon after open end", header: "bytes=4-;", size: 10, want: stowgate.ByteRange{Start: 4, End: 9}, ok: true},
		{name: "text before bytes", header: "foo bytes=1-2", size: 10, want: stowgate.ByteRange{Start: 1, End: 2}, ok: true},
		{name: "end beyond size is not checked", header: "bytes=1-50", size: 10, want: stowgate.ByteRange{Start: 1, End: 50}, ok: true},
		{name: "zero zero", header: "bytes=0-0", size: 10, want: stowgate.ByteRange{}, ok: true},
		{name: "no bytes unit", header: "items=0-1", size: 10},
		{name: "empty spec", header: "bytes=", size: 10},
		{name: "start only", header: "bytes=5", size: 10},
		{name: "letter in start", header: "bytes=1a-5", size: 10},
		{name: "letter in end", header: "bytes=1-5x", size: 10},
		{name: "space", header: "bytes= 1-5", size: 10},
		{name: "separator before dash", header: "bytes=1,2-3", size: 10},
		{name: "start after end", header: "bytes=5-2", size: 10},
		{name: "open end past size", header: "bytes=10-", size: 10},
		{name: "zero size", header: "bytes=0-1", size: 0},
		{name: "overflow", header: "bytes=99999999999999999999-", size: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := stowgate.ParseRange(tt.header, tt.size)

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestByteRange(t *testing.T) {
	t.Parallel()

	r := stowgate.ByteRange{Start: 2, End: 5}

	assert.Equal(t, uint64(4), r.Len())
	assert.False(t, r.IsZero())
	assert.Equal(t, "bytes 2-5/10", r.ContentRange(10))
	assert.True(t, stowgate.ByteRange{}.IsZero())
}
