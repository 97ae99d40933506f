//go:build windows

package fs

import "os"

// Windows has no POSIX inode; Changed falls back to size and mtime.
func inodeOf(os.FileInfo) uint64 {
	return 0
}
