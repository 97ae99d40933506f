// Package report collects per-unit outcomes of a run and renders them.
package report

import (
	"time"
)

// UnitResult is the outcome for one archive unit.
type UnitResult struct {
	Name          string
	Path          string
	ArchivePath   string
	Archived      int
	ArchivedBytes int64
	Expired       int
	ExpiredBytes  int64
	Fresh         int
	Skipped       bool // not processed: unreadable or the run was interrupted
	Errors        []error
}

func (u *UnitResult) AddError(err error) {
	if err != nil {
		u.Errors = append(u.Errors, err)
	}
}

func (u UnitResult) Failed() bool { return len(u.Errors) > 0 }

// RunResult is built during a run and dropped after it has been reported.
// Files modified before ArchiveCutoff were archivable, files modified
// before DeleteBefore expired. A zero DeleteBefore disables expiry.
type RunResult struct {
	ID            string
	Root          string
	DryRun        bool
	Interrupted   bool
	StartedAt     time.Time
	FinishedAt    time.Time
	ArchiveCutoff time.Time
	DeleteBefore  time.Time
	Units         []UnitResult
}

func (r RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Totals aggregates all units of a run.
type Totals struct {
	Units         int   `json:"units"`
	FailedUnits   int   `json:"failed_units"`
	SkippedUnits  int   `json:"skipped_units"`
	Archives      int   `json:"archives"`
	Archived      int   `json:"archived"`
	ArchivedBytes int64 `json:"archived_bytes"`
	Expired       int   `json:"expired"`
	ExpiredBytes  int64 `json:"expired_bytes"`
	Fresh         int   `json:"fresh"`
	Errors        int   `json:"errors"`
}

func (r RunResult) Totals() Totals {
	t := Totals{Units: len(r.Units)}
	for _, u := range r.Units {
		if u.Failed() {
			t.FailedUnits++
		}
		if u.Skipped {
			t.SkippedUnits++
		}
		if u.ArchivePath != "" && u.Archived > 0 {
			t.Archives++
		}
		t.Archived += u.Archived
		t.ArchivedBytes += u.ArchivedBytes
		t.Expired += u.Expired
		t.ExpiredBytes += u.ExpiredBytes
		t.Fresh += u.Fresh
		t.Errors += len(u.Errors)
	}
	return t
}

// Failed reports whether any unit recorded an error.
func (r RunResult) Failed() bool {
	for _, u := range r.Units {
		if u.Failed() {
			return true
		}
	}
	return false
}
