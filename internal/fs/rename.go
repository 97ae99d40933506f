package fs

import (
	"context"

	"github.com/spf13/afero"
)

// renameWithRetry moves a finished archive into place.
// Within one directory the rename is atomic on POSIX filesystems.
func renameWithRetry(ctx context.Context, af afero.Fs, oldPath, newPath string) error {
	return retry(ctx, "rename", func() error {
		return af.Rename(oldPath, newPath)
	})
}
