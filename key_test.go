package stowgate_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/stowgate"
)

func TestResolveKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		prefix  string
		want    string
		wantErr error
	}{
		{name: "plain", path: "/media/a.txt", prefix: "/media/", want: "a.txt"},
		{name: "nested", path: "/media/x/y/z.bin", prefix: "/media/", want: "x/y/z.bin"},
		{name: "space", path: "/media/a%20b", prefix: "/media/", want: "a b"},
		{name: "lowercase hex", path: "/m/%c3%a9t%c3%a9", prefix: "/m/", want: "été"},
		{name: "uppercase hex", path: "/m/%C3%A9", prefix: "/m/", want: "é"},
		{name: "encoded slash", path: "/m/a%2Fb", prefix: "/m/", want: "a/b"},
		{name: "plus kept", path: "/m/a+b", prefix: "/m/", want: "a+b"},
		{name: "single pass", path: "/m/%2541", prefix: "/m/", want: "%41"},
		{name: "prefix without slash", path: "/mediafile", prefix: "/media", want: "file"},
		{name: "empty key", path: "/media/", prefix: "/media/", wantErr: stowgate.ErrNotFound},
		{name: "shorter than prefix", path: "/me", prefix: "/media/", wantErr: stowgate.ErrInternal},
		{name: "bad hex", path: "/m/%zz", prefix: "/m/", wantErr: stowgate.ErrInvalidInput},
		{name: "one bad digit", path: "/m/%4g", prefix: "/m/", wantErr: stowgate.ErrInvalidInput},
		{name: "truncated", path: "/m/abc%4", prefix: "/m/", wantErr: stowgate.ErrInvalidInput},
		{name: "lone percent", path: "/m/%", prefix: "/m/", wantErr: stowgate.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := stowgate.ResolveKey(tt.path, tt.prefix)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), len(tt.path)-len(tt.prefix))
		})
	}
}

func TestResolveKey_EscapedRoundTrip(t *testing.T) {
	t.Parallel()

	var all strings.Builder
	keys := []string{}
	for c := byte(0x20); c < 0x7f; c++ {
		keys = append(keys, "k"+string(c)+"k")
		all.WriteByte(c)
	}
	keys = append(keys, all.String(), "dir/sub dir/file name+v2 (final)%.txt")

	for _, key := range keys {
		path := "/media/" + url.PathEscape(key)

		got, err := stowgate.ResolveKey(path, "/media/")
		require.NoError(t, err, "path %q", path)
		assert.Equal(t, key, got, "path %q", path)
		assert.LessOrEqual(t, len(got), len(path)-len("/media/"))

		again, err := stowgate.ResolveKey(path, "/media/")
		require.NoError(t, err)
		assert.Equal(t, got, again, "resolving %q twice", path)
	}
}
