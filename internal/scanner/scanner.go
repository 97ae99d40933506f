// Package scanner turns a root directory into archive units: one per
// immediate subdirectory, each listing every regular file beneath it.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/raoulx24/dir-archiver/internal/fs"
	"github.com/raoulx24/dir-archiver/internal/logging"
	"github.com/raoulx24/dir-archiver/internal/unit"
)

// ErrInvalidRoot means the root is missing, not a directory or unreadable.
var ErrInvalidRoot = errors.New("invalid root directory")

type Scanner struct {
	fs      fs.FS
	log     logging.Logger
	exclude map[string]struct{}
}

// New creates a scanner. Directories in exclude are never treated as units.
func New(filesystem fs.FS, log logging.Logger, exclude ...string) *Scanner {
	ex := make(map[string]struct{}, len(exclude))
	for _, p := range exclude {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		ex[filepath.Clean(p)] = struct{}{}
	}
	return &Scanner{fs: filesystem, log: log, exclude: ex}
}

// Scan returns the units of root sorted by name. Files directly in root
// are ignored. A unit that cannot be read is returned with Err set.
func (s *Scanner) Scan(root string) ([]unit.ArchiveUnit, error) {
	st, err := s.fs.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRoot, root, err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}

	entries, err := s.fs.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalidRoot, root, err)
	}

	var (
		units   []unit.ArchiveUnit
		ignored int
	)
	for _, e := range entries {
		if !e.IsDir() {
			ignored++
			continue
		}
		if s.excluded(e.Path) {
			s.log.Debug("scanner: skipping excluded directory", "path", e.Path)
			continue
		}
		units = append(units, s.scanUnit(e.Path))
	}

	s.log.Debug("scanner: root scanned", "root", root, "units", len(units), "ignoredTopLevel", ignored)
	return units, nil
}

func (s *Scanner) scanUnit(dir string) unit.ArchiveUnit {
	u := unit.ArchiveUnit{Name: filepath.Base(dir), Path: dir}

	var files []unit.FileEntry
	err := s.fs.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		st, err := s.fs.Stat(path)
		if err != nil {
			return err
		}
		entry, err := unit.FromFileInfo(dir, st)
		if err != nil {
			return err
		}
		files = append(files, entry)
		return nil
	})
	if err != nil {
		s.log.Warn("scanner: unit unreadable, skipping", "unit", u.Name, "error", err)
		u.Err = fmt.Errorf("scanning %s: %w", dir, err)
		return u
	}

	u.Files = files
	return u
}

func (s *Scanner) excluded(path string) bool {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	_, ok := s.exclude[filepath.Clean(path)]
	return ok
}
