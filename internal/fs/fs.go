// Package fs defines the filesystem abstraction used by dir-archiver.
// It provides the FS interface and the FileInfo type shared across the system.
package fs

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

type FileInfo struct {
	Path  string
	Size  int64
	MTime time.Time
	Inode uint64
	Mode  os.FileMode
}

func (fi FileInfo) IsDir() bool     { return fi.Mode.IsDir() }
func (fi FileInfo) IsRegular() bool { return fi.Mode.IsRegular() }

// File is an open file handle. Archives are read back through ReadAt.
type File = afero.File

type FS interface {
	Stat(path string) (FileInfo, error)
	ReadDir(path string) ([]FileInfo, error)
	Walk(root string, fn filepath.WalkFunc) error
	Exists(path string) (bool, error)
	Open(path string) (File, error)
	Create(path string) (File, error)
	Rename(ctx context.Context, oldPath, newPath string) error
	MkdirAll(path string) error
	Remove(path string) error
}
