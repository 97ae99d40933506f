package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/raoulx24/dir-archiver/internal/archive"
	"github.com/raoulx24/dir-archiver/internal/config"
	"github.com/raoulx24/dir-archiver/internal/fs"
	"github.com/raoulx24/dir-archiver/internal/logging"
	"github.com/raoulx24/dir-archiver/internal/report"
	"github.com/raoulx24/dir-archiver/internal/retention"
	"github.com/raoulx24/dir-archiver/internal/unit"
)

// processor handles a single unit with the settings of one run.
type processor struct {
	cfg      config.ArchiveConfig
	fs       fs.FS
	log      logging.Logger
	archiver *archive.Writer
	remover  *retention.Remover
}

func newProcessor(cfg config.ArchiveConfig, filesystem fs.FS, log logging.Logger) *processor {
	return &processor{
		cfg: cfg,
		fs:  filesystem,
		log: log,
		archiver: archive.New(filesystem, log, archive.Options{
			OutputDir:   cfg.OutputDir,
			OnCollision: collisionPolicy(cfg.OnCollision),
		}),
		remover: retention.NewRemover(filesystem, log),
	}
}

// process runs one unit to completion. Cancellation only aborts an archive
// still being written; once it is in place the originals are removed even
// if ctx is done, so a unit is never left half deleted.
func (p *processor) process(ctx context.Context, u unit.ArchiveUnit, now time.Time, policy retention.Policy) report.UnitResult {
	res := report.UnitResult{Name: u.Name, Path: u.Path}
	if u.Err != nil {
		res.Skipped = true
		res.AddError(u.Err)
		p.log.Error("worker: unit skipped", "unit", u.Name, "error", u.Err)
		return res
	}

	archivable, expired, fresh := classify(u, now, policy)
	res.Fresh = len(fresh)
	p.log.Debug("worker: unit classified", "unit", u.Name,
		"archivable", len(archivable), "expired", len(expired), "fresh", len(fresh))

	if p.cfg.DryRun {
		res.Archived, res.ArchivedBytes = len(archivable), unit.TotalSize(archivable)
		res.Expired, res.ExpiredBytes = len(expired), unit.TotalSize(expired)
		return res
	}

	var removed []string
	if len(archivable) > 0 {
		out := p.archiver.Write(ctx, u, archivable, now)
		if !out.Written {
			err := fmt.Errorf("archiving %s: %w", u.Name, out.Err)
			p.log.Error("worker: archive failed, originals kept", "unit", u.Name, "error", out.Err)
			res.AddError(err)
		} else {
			res.ArchivePath = out.Path
			res.Archived = out.Entries
			res.ArchivedBytes = out.Bytes
			var errs []error
			removed, errs = p.removeArchived(archivable)
			for _, err := range errs {
				res.AddError(err)
			}
		}
	}

	rm := p.remover.RemoveExpired(context.WithoutCancel(ctx), expired)
	res.Expired, res.ExpiredBytes = rm.Deleted, rm.Bytes
	for _, err := range rm.Errors {
		res.AddError(err)
	}
	removed = append(removed, rm.Paths...)

	if p.cfg.PruneEmptyDirs {
		p.pruneEmptyDirs(u.Path, removed)
	}
	return res
}

// classify splits the unit's files. The unit's own archives are never
// archivable again but still expire.
func classify(u unit.ArchiveUnit, now time.Time, policy retention.Policy) (archivable, expired, fresh []unit.FileEntry) {
	artifacts := archive.NewArtifactMatcher(u.Name)
	for _, f := range u.Files {
		c := policy.Classify(f.ModTime, now)
		if c == retention.Archivable && artifacts.Match(f.Rel) {
			c = retention.Fresh
		}
		switch c {
		case retention.Archivable:
			archivable = append(archivable, f)
		case retention.Expired:
			expired = append(expired, f)
		default:
			fresh = append(fresh, f)
		}
	}
	return archivable, expired, fresh
}

// removeArchived deletes originals that are now in the archive, keeping any
// that changed after the scan. It returns the paths it removed.
func (p *processor) removeArchived(files []unit.FileEntry) (removed []string, errs []error) {
	for _, f := range files {
		st, err := p.fs.Stat(f.Path)
		if err != nil {
			errs = append(errs, fmt.Errorf("checking archived %s: %w", f.Path, err))
			continue
		}
		if fs.Changed(f.Info(), st) {
			p.log.Warn("worker: file changed after scan, keeping original", "path", f.Path)
			errs = append(errs, fmt.Errorf("%w: %s", ErrSourceChanged, f.Path))
			continue
		}
		if err := p.fs.Remove(f.Path); err != nil {
			p.log.Error("worker: removing archived original failed", "path", f.Path, "error", err)
			errs = append(errs, fmt.Errorf("removing archived %s: %w", f.Path, err))
			continue
		}
		removed = append(removed, f.Path)
	}
	return removed, errs
}

// pruneEmptyDirs removes directories under root that held one of the
// removed files and are now empty, deepest first. Directories that were
// empty before the run are left alone, and root itself is kept.
func (p *processor) pruneEmptyDirs(root string, removed []string) {
	root = filepath.Clean(root)
	seen := map[string]struct{}{}
	var dirs []string
	for _, path := range removed {
		for d := filepath.Dir(path); d != root && strings.HasPrefix(d, root+string(os.PathSeparator)); d = filepath.Dir(d) {
			if _, ok := seen[d]; ok {
				break
			}
			seen[d] = struct{}{}
			dirs = append(dirs, d)
		}
	}

	sort.Slice(dirs, func(i, j int) bool {
		return strings.Count(dirs[i], string(os.PathSeparator)) > strings.Count(dirs[j], string(os.PathSeparator))
	})
	for _, d := range dirs {
		entries, err := p.fs.ReadDir(d)
		if err != nil || len(entries) > 0 {
			continue
		}
		if err := p.fs.Remove(d); err != nil {
			p.log.Warn("worker: could not prune empty directory", "path", d, "error", err)
			continue
		}
		p.log.Debug("worker: pruned empty directory", "path", d)
	}
}
