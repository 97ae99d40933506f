package unit

import (
	"path/filepath"
	"time"

	"github.com/raoulx24/dir-archiver/internal/fs"
)

// FileEntry is a file as seen at scan time. It is not refreshed before
// deletion; callers compare it with a new Stat via fs.Changed.
type FileEntry struct {
	Path    string // absolute path on disk
	Rel     string // slash-separated path relative to the unit directory
	Size    int64
	ModTime time.Time
	Inode   uint64
}

// FromFileInfo builds an entry for a file found under unitDir.
func FromFileInfo(unitDir string, info fs.FileInfo) (FileEntry, error) {
	rel, err := filepath.Rel(unitDir, info.Path)
	if err != nil {
		return FileEntry{}, err
	}
	return FileEntry{
		Path:    info.Path,
		Rel:     filepath.ToSlash(rel),
		Size:    info.Size,
		ModTime: info.MTime,
		Inode:   info.Inode,
	}, nil
}

// Info converts the entry back for comparison with a fresh Stat.
func (e FileEntry) Info() fs.FileInfo {
	return fs.FileInfo{
		Path:  e.Path,
		Size:  e.Size,
		MTime: e.ModTime,
		Inode: e.Inode,
	}
}

// TotalSize sums the sizes of entries.
func TotalSize(entries []FileEntry) int64 {
	var n int64
	for _, e := range entries {
		n += e.Size
	}
	return n
}
