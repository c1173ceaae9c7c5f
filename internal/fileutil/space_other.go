//go:build !unix

package fileutil

import (
	"errors"
	"fmt"
)

// FreeBytes reports the free space on the filesystem containing path.
// Unsupported platforms report errors.ErrUnsupported so callers can skip
// the check instead of failing on a zero reading.
func FreeBytes(path string) (uint64, error) {
	return 0, fmt.Errorf("free space for %q: %w", path, errors.ErrUnsupported)
}
