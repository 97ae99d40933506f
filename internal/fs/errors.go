package fs

import (
	"errors"
	"syscall"
)

// IsTransient reports whether err is worth retrying.
// Disk full and permission errors are permanent.
func IsTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ETIMEDOUT)
}

// IsNoSpace reports whether err came from a full device.
func IsNoSpace(err error) bool {
	return errors.Is(err, syscall.ENOSPC)
}
