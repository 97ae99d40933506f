package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Local implements FS on top of an afero filesystem. New uses the OS;
// Wrap lets callers substitute in-memory or fault-injecting backends.
type Local struct {
	af afero.Fs
}

func New() *Local {
	return &Local{af: afero.NewOsFs()}
}

func Wrap(af afero.Fs) *Local {
	return &Local{af: af}
}

func (l *Local) Stat(path string) (FileInfo, error) {
	st, err := l.af.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return infoOf(path, st), nil
}

// ReadDir returns the directory entries sorted by name.
// Symlinks are reported as such and not followed.
func (l *Local) ReadDir(path string) ([]FileInfo, error) {
	entries, err := afero.ReadDir(l.af, path)
	if err != nil {
		return nil, err
	}

	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, infoOf(filepath.Join(path, e.Name()), e))
	}
	return out, nil
}

func (l *Local) Walk(root string, fn filepath.WalkFunc) error {
	return afero.Walk(l.af, root, fn)
}

func (l *Local) Exists(path string) (bool, error) {
	return afero.Exists(l.af, path)
}

func (l *Local) Open(path string) (File, error) {
	return l.af.Open(path)
}

func (l *Local) Create(path string) (File, error) {
	return l.af.Create(path)
}

func (l *Local) MkdirAll(path string) error {
	return l.af.MkdirAll(path, 0o755)
}

func (l *Local) Remove(path string) error {
	return l.af.Remove(path)
}

func (l *Local) Rename(ctx context.Context, oldPath, newPath string) error {
	return renameWithRetry(ctx, l.af, oldPath, newPath)
}

func infoOf(path string, st os.FileInfo) FileInfo {
	return FileInfo{
		Path:  path,
		Size:  st.Size(),
		MTime: st.ModTime(),
		Inode: inodeOf(st),
		Mode:  st.Mode(),
	}
}
