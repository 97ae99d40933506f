// Package archive writes one zip per archive unit. The archive is built in
// a hidden temp file, read back and checked, and only then renamed to its
// final name, so a reported success always means a complete archive.
package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/raoulx24/dir-archiver/internal/fs"
	"github.com/raoulx24/dir-archiver/internal/logging"
	"github.com/raoulx24/dir-archiver/internal/unit"
)

var (
	// ErrAlreadyExists is returned when the archive name is taken and the
	// policy forbids picking another.
	ErrAlreadyExists = errors.New("archive already exists")
	// ErrVerify is returned when the written archive does not read back.
	ErrVerify = errors.New("archive verification failed")
)

type CollisionPolicy string

const (
	// CollisionSuffix appends _1, _2, ... to the base name.
	CollisionSuffix CollisionPolicy = "suffix"
	// CollisionFail refuses to write.
	CollisionFail CollisionPolicy = "fail"
)

const maxSuffix = 999

type Options struct {
	OutputDir   string // empty: write into the unit directory
	OnCollision CollisionPolicy
}

// Outcome reports one Write call. Written is true only when the archive is
// complete on disk under Path.
type Outcome struct {
	Written bool
	Path    string
	Entries int
	Bytes   int64
	Err     error
}

type Writer struct {
	fs   fs.FS
	log  logging.Logger
	opts Options
}

func New(filesystem fs.FS, log logging.Logger, opts Options) *Writer {
	if opts.OnCollision == "" {
		opts.OnCollision = CollisionSuffix
	}
	return &Writer{fs: filesystem, log: log, opts: opts}
}

// Write archives files of u under their paths relative to the unit.
// It never modifies or removes the source files.
func (w *Writer) Write(ctx context.Context, u unit.ArchiveUnit, files []unit.FileEntry, date time.Time) Outcome {
	if len(files) == 0 {
		return Outcome{}
	}

	dest, err := w.destination(u, date)
	if err != nil {
		return Outcome{Err: err}
	}
	tmp := tempName(dest)
	w.log.Debug("archive: writing", "unit", u.Name, "tmp", tmp, "dest", dest, "files", len(files))

	sums, n, err := w.writeZip(ctx, tmp, files)
	if err == nil {
		err = w.verify(tmp, sums)
	}
	if err == nil {
		err = w.finalize(ctx, tmp, dest)
	}
	if err != nil {
		w.discard(tmp)
		return Outcome{Path: dest, Err: err}
	}

	w.log.Info("archive: written", "unit", u.Name, "path", dest, "entries", len(files), "bytes", n)
	return Outcome{Written: true, Path: dest, Entries: len(files), Bytes: n}
}

// destination picks the final archive path according to the collision policy.
func (w *Writer) destination(u unit.ArchiveUnit, date time.Time) (string, error) {
	dir := u.Path
	if w.opts.OutputDir != "" {
		dir = w.opts.OutputDir
		if err := w.fs.MkdirAll(dir); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}

	name := u.ArchiveName(date)
	path := filepath.Join(dir, name)
	taken, err := w.fs.Exists(path)
	if err != nil {
		return "", fmt.Errorf("checking %s: %w", path, err)
	}
	if !taken {
		return path, nil
	}
	if w.opts.OnCollision == CollisionFail {
		return "", fmt.Errorf("%w: %s", ErrAlreadyExists, path)
	}

	base := strings.TrimSuffix(name, ".zip")
	for i := 1; i <= maxSuffix; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d.zip", base, i))
		taken, err := w.fs.Exists(candidate)
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", candidate, err)
		}
		if !taken {
			w.log.Debug("archive: name taken, using suffix", "path", path, "chosen", candidate)
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s and %d suffixed variants", ErrAlreadyExists, path, maxSuffix)
}

func (w *Writer) writeZip(ctx context.Context, path string, files []unit.FileEntry) (map[string]uint64, int64, error) {
	out, err := w.fs.Create(path)
	if err != nil {
		return nil, 0, fmt.Errorf("creating archive: %w", err)
	}

	zw := zip.NewWriter(out)
	sums := make(map[string]uint64, len(files))
	var total int64

	for _, e := range files {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			_ = out.Close()
			return nil, 0, err
		}

		sum, n, err := w.addEntry(zw, e)
		if err != nil {
			_ = zw.Close()
			_ = out.Close()
			return nil, 0, fmt.Errorf("adding %s: %w", e.Rel, err)
		}
		sums[e.Rel] = sum
		total += n
	}

	if err := zw.Close(); err != nil {
		_ = out.Close()
		return nil, 0, fmt.Errorf("closing zip: %w", err)
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return nil, 0, fmt.Errorf("syncing archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, 0, fmt.Errorf("closing archive: %w", err)
	}
	return sums, total, nil
}

func (w *Writer) addEntry(zw *zip.Writer, e unit.FileEntry) (uint64, int64, error) {
	src, err := w.fs.Open(e.Path)
	if err != nil {
		return 0, 0, err
	}
	defer src.Close()

	st, err := src.Stat()
	if err != nil {
		return 0, 0, err
	}
	hdr, err := zip.FileInfoHeader(st)
	if err != nil {
		return 0, 0, err
	}
	hdr.Name = e.Rel
	hdr.Method = zip.Deflate

	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return 0, 0, err
	}

	h := xxhash.New()
	n, err := io.Copy(io.MultiWriter(dst, h), src)
	if err != nil {
		return 0, 0, err
	}
	return h.Sum64(), n, nil
}

// finalize moves the verified temp file to dest. The name is checked once
// more so a file that appeared meanwhile is never overwritten.
func (w *Writer) finalize(ctx context.Context, tmp, dest string) error {
	taken, err := w.fs.Exists(dest)
	if err != nil {
		return fmt.Errorf("checking %s: %w", dest, err)
	}
	if taken {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, dest)
	}
	if err := w.fs.Rename(ctx, tmp, dest); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

func (w *Writer) discard(tmp string) {
	if err := w.fs.Remove(tmp); err != nil {
		if ok, _ := w.fs.Exists(tmp); ok {
			w.log.Error("archive: could not remove partial archive", "path", tmp, "error", err)
		}
	}
}

func tempName(dest string) string {
	return filepath.Join(filepath.Dir(dest), "."+filepath.Base(dest)+".tmp")
}
