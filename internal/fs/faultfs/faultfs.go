// Package faultfs wraps an afero filesystem to inject write failures,
// such as a disk filling up halfway through an archive.
package faultfs

import (
	"os"
	"syscall"

	"github.com/spf13/afero"
)

// NoSpace makes files created through it fail with ENOSPC once limit bytes
// have been written. Only paths accepted by match are affected; a nil
// match affects every created file.
type NoSpace struct {
	afero.Fs
	limit int64
	match func(name string) bool
}

func NewNoSpace(base afero.Fs, limit int64, match func(name string) bool) *NoSpace {
	return &NoSpace{Fs: base, limit: limit, match: match}
}

func (n *NoSpace) Create(name string) (afero.File, error) {
	f, err := n.Fs.Create(name)
	if err != nil || (n.match != nil && !n.match(name)) {
		return f, err
	}
	return &limitedFile{File: f, left: n.limit}, nil
}

type limitedFile struct {
	afero.File
	left int64
}

func (f *limitedFile) Write(p []byte) (int, error) {
	if int64(len(p)) <= f.left {
		n, err := f.File.Write(p)
		f.left -= int64(n)
		return n, err
	}

	n, _ := f.File.Write(p[:f.left])
	f.left = 0
	return n, &os.PathError{Op: "write", Path: f.Name(), Err: syscall.ENOSPC}
}

// Corrupt flips the bytes in [from, to) of every file it creates that
// match accepts, after they pass through Write. The writer sees success.
type Corrupt struct {
	afero.Fs
	from, to int64
	match    func(name string) bool
}

func NewCorrupt(base afero.Fs, from, to int64, match func(name string) bool) *Corrupt {
	return &Corrupt{Fs: base, from: from, to: to, match: match}
}

func (c *Corrupt) Create(name string) (afero.File, error) {
	f, err := c.Fs.Create(name)
	if err != nil || (c.match != nil && !c.match(name)) {
		return f, err
	}
	return &corruptFile{File: f, from: c.from, to: c.to}, nil
}

type corruptFile struct {
	afero.File
	off      int64
	from, to int64
}

func (f *corruptFile) Write(p []byte) (int, error) {
	start, end := f.off, f.off+int64(len(p))
	if start < f.to && end > f.from {
		buf := append([]byte(nil), p...)
		for i := max(start, f.from); i < min(end, f.to); i++ {
			buf[i-start] ^= 0xff
		}
		p = buf
	}
	n, err := f.File.Write(p)
	f.off += int64(n)
	return n, err
}

// Deny fails Open and OpenFile with os.ErrPermission for every path that
// deny accepts, like a directory the process may not read.
type Deny struct {
	afero.Fs
	deny func(name string) bool
}

func NewDeny(base afero.Fs, deny func(name string) bool) *Deny {
	return &Deny{Fs: base, deny: deny}
}

func (d *Deny) Open(name string) (afero.File, error) {
	if d.deny(name) {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return d.Fs.Open(name)
}

func (d *Deny) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if d.deny(name) {
		return nil, &os.PathError{Op: "open", Path: name, Err: os.ErrPermission}
	}
	return d.Fs.OpenFile(name, flag, perm)
}
