// Package worker drives archive runs: it scans the root, then processes
// each unit in turn (classify, archive, delete originals, remove expired).
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raoulx24/dir-archiver/internal/archive"
	"github.com/raoulx24/dir-archiver/internal/config"
	"github.com/raoulx24/dir-archiver/internal/fs"
	"github.com/raoulx24/dir-archiver/internal/logging"
	"github.com/raoulx24/dir-archiver/internal/report"
	"github.com/raoulx24/dir-archiver/internal/retention"
	"github.com/raoulx24/dir-archiver/internal/scanner"
)

// ErrSourceChanged marks an archived original that was modified after the
// scan; it is kept rather than deleted.
var ErrSourceChanged = errors.New("source changed since scan")

// Worker runs archive passes over the configured root.
type Worker struct {
	mu  sync.RWMutex
	cfg config.ArchiveConfig
	fs  fs.FS
	log logging.Logger
	now func() time.Time
}

// New creates a worker. A nil filesystem means the local OS filesystem.
func New(cfg config.ArchiveConfig, log logging.Logger, filesystem fs.FS) *Worker {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Worker{
		cfg: cfg,
		fs:  filesystem,
		log: log,
		now: time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (w *Worker) WithClock(now func() time.Time) *Worker {
	w.now = now
	return w
}

// UpdateConfig hot-reloads archive settings. A run in progress keeps the
// settings it started with.
func (w *Worker) UpdateConfig(cfg config.ArchiveConfig) {
	w.mu.Lock()
	w.cfg = cfg
	w.mu.Unlock()
}

// Run performs one pass. It returns an error only when nothing could be
// processed: an invalid root (wrapping scanner.ErrInvalidRoot) or an
// unusable threshold. Per-unit problems are in the result.
func (w *Worker) Run(ctx context.Context) (report.RunResult, error) {
	w.mu.RLock()
	cfg := w.cfg
	w.mu.RUnlock()

	now := w.now()
	res := report.RunResult{
		ID:            uuid.NewString(),
		Root:          cfg.Root,
		DryRun:        cfg.DryRun,
		StartedAt:     now,
		ArchiveCutoff: now.Add(-time.Duration(cfg.ArchiveAfterDays) * 24 * time.Hour),
	}

	policy, err := PolicyFor(cfg, now)
	if err != nil {
		res.FinishedAt = w.now()
		return res, err
	}
	res.DeleteBefore = policy.DeleteBefore
	if !policy.DeleteBefore.IsZero() && policy.DeleteBefore.After(res.ArchiveCutoff) {
		w.log.Warn("worker: delete threshold is newer than archive threshold; expiry takes precedence",
			"deleteBefore", policy.DeleteBefore, "archiveCutoff", res.ArchiveCutoff)
	}

	w.log.Info("worker: run started", "run", res.ID, "root", cfg.Root, "dryRun", cfg.DryRun,
		"archiveAfterDays", cfg.ArchiveAfterDays, "deleteBefore", policy.DeleteBefore)

	units, err := scanner.New(w.fs, w.log, cfg.OutputDir).Scan(cfg.Root)
	if err != nil {
		res.FinishedAt = w.now()
		return res, err
	}

	p := newProcessor(cfg, w.fs, w.log)
	for i, u := range units {
		if ctx.Err() != nil {
			w.log.Warn("worker: run interrupted", "run", res.ID, "remainingUnits", len(units)-i)
			res.Interrupted = true
			for _, rest := range units[i:] {
				res.Units = append(res.Units, report.UnitResult{Name: rest.Name, Path: rest.Path, Skipped: true})
			}
			break
		}
		res.Units = append(res.Units, p.process(ctx, u, now, policy))
	}

	res.FinishedAt = w.now()
	t := res.Totals()
	w.log.Info("worker: run finished", "run", res.ID, "units", t.Units, "failedUnits", t.FailedUnits,
		"archived", t.Archived, "expired", t.Expired, "duration", res.Duration())
	return res, nil
}

// PolicyFor resolves the thresholds of cfg relative to now.
func PolicyFor(cfg config.ArchiveConfig, now time.Time) (retention.Policy, error) {
	p := retention.Policy{ArchiveAfterDays: cfg.ArchiveAfterDays}
	switch {
	case cfg.DeleteAfterDays > 0:
		p.DeleteBefore = retention.DeleteBeforeDays(now, cfg.DeleteAfterDays)
	case cfg.DeleteBefore != "":
		t, err := time.ParseInLocation(config.DateLayout, cfg.DeleteBefore, now.Location())
		if err != nil {
			return p, fmt.Errorf("parsing delete threshold: %w", err)
		}
		p.DeleteBefore = t
	}
	return p, nil
}

func collisionPolicy(s string) archive.CollisionPolicy {
	if s == string(archive.CollisionFail) {
		return archive.CollisionFail
	}
	return archive.CollisionSuffix
}
