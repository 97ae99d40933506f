//go:build unix

package fs

import (
	"os"
	"syscall"
)

// inodeOf extracts the inode so a file swapped in under the same name
// between scan and deletion is noticed. Non-OS backends report zero.
func inodeOf(info os.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return uint64(st.Ino)
}
