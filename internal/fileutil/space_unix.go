//go:build unix

package fileutil

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// FreeBytes reports the free space on the filesystem containing path.
func FreeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %q: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
