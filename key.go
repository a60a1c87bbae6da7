package stowgate

import (
	"fmt"
	"net/url"
)

// ResolveKey returns the object key for a request path routed through prefix.
// The suffix after prefix is percent-decoded in a single pass.
//
// It returns ErrNotFound when nothing follows the prefix, ErrInternal when the path
// is shorter than the prefix and ErrInvalidInput for malformed escapes.
func ResolveKey(path, prefix string) (string, error) {
	if len(path) == len(prefix) {
		return "", fmt.Errorf("resolve key: %w: empty key", ErrNotFound)
	}

	if len(path) < len(prefix) {
		return "", fmt.Errorf("resolve key: %w: path %q shorter than prefix %q", ErrInternal, path, prefix)
	}

	key, err := url.PathUnescape(path[len(prefix):])
	if err != nil {
		return "", fmt.Errorf("resolve key %q: %w: %w", path, ErrInvalidInput, err)
	}

	return key, nil
}
