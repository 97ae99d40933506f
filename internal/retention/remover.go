package retention

import (
	"context"
	"fmt"

	"github.com/raoulx24/dir-archiver/internal/fs"
	"github.com/raoulx24/dir-archiver/internal/logging"
	"github.com/raoulx24/dir-archiver/internal/unit"
)

// RemovalResult is the outcome of one RemoveExpired call.
type RemovalResult struct {
	Deleted int
	Bytes   int64
	Paths   []string // removed files
	Errors  []error
}

// Remover deletes expired files one at a time.
type Remover struct {
	fs  fs.FS
	log logging.Logger
}

func NewRemover(filesystem fs.FS, log logging.Logger) *Remover {
	return &Remover{fs: filesystem, log: log}
}

// RemoveExpired deletes every file; a failure is recorded and the rest
// still run. The context is only checked before starting so that a unit
// is never left half processed.
func (r *Remover) RemoveExpired(ctx context.Context, files []unit.FileEntry) RemovalResult {
	var res RemovalResult
	if len(files) == 0 || ctx.Err() != nil {
		return res
	}

	for _, f := range files {
		if err := r.fs.Remove(f.Path); err != nil {
			r.log.Error("retention: removing expired file failed", "path", f.Path, "error", err)
			res.Errors = append(res.Errors, fmt.Errorf("removing expired %s: %w", f.Path, err))
			continue
		}
		r.log.Debug("retention: removed expired file", "path", f.Path, "mtime", f.ModTime)
		res.Deleted++
		res.Bytes += f.Size
		res.Paths = append(res.Paths, f.Path)
	}
	return res
}
