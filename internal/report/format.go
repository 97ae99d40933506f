package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/docker/go-units"
)

// WriteText prints a human readable summary, one line per unit.
func WriteText(w io.Writer, r RunResult) error {
	var b strings.Builder

	mode := ""
	if r.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(&b, "Run %s on %s%s\n", r.ID, r.Root, mode)

	for _, u := range r.Units {
		status := "ok"
		switch {
		case u.Failed():
			status = "FAILED"
		case u.Skipped:
			status = "skipped"
		}
		fmt.Fprintf(&b, "  [%s] %s: archived %d (%s), expired %d (%s), kept %d",
			status, u.Name,
			u.Archived, units.HumanSize(float64(u.ArchivedBytes)),
			u.Expired, units.HumanSize(float64(u.ExpiredBytes)),
			u.Fresh)
		if u.ArchivePath != "" && u.Archived > 0 {
			fmt.Fprintf(&b, " -> %s", u.ArchivePath)
		}
		b.WriteString("\n")
		for _, err := range u.Errors {
			fmt.Fprintf(&b, "      error: %v\n", err)
		}
	}

	t := r.Totals()
	fmt.Fprintf(&b, "Total: %d units (%d failed, %d skipped), %d files (%s) archived into %d archives, %d expired files (%s) removed in %s\n",
		t.Units, t.FailedUnits, t.SkippedUnits,
		t.Archived, units.HumanSize(float64(t.ArchivedBytes)), t.Archives,
		t.Expired, units.HumanSize(float64(t.ExpiredBytes)),
		r.Duration().Round(time.Millisecond))
	if r.Interrupted {
		b.WriteString("Run interrupted before all units were processed.\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

type jsonUnit struct {
	Name          string   `json:"name"`
	Path          string   `json:"path"`
	ArchivePath   string   `json:"archive_path,omitempty"`
	Archived      int      `json:"archived"`
	ArchivedBytes int64    `json:"archived_bytes"`
	Expired       int      `json:"expired"`
	ExpiredBytes  int64    `json:"expired_bytes"`
	Fresh         int      `json:"fresh"`
	Skipped       bool     `json:"skipped,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}

type jsonRun struct {
	ID          string     `json:"id"`
	Root        string     `json:"root"`
	DryRun      bool       `json:"dry_run"`
	Interrupted bool       `json:"interrupted"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  time.Time  `json:"finished_at"`
	Duration    string     `json:"duration_human"`
	Totals      Totals     `json:"totals"`
	Units       []jsonUnit `json:"units"`
}

// WriteJSON prints the run as indented JSON.
func WriteJSON(w io.Writer, r RunResult) error {
	out := jsonRun{
		ID:          r.ID,
		Root:        r.Root,
		DryRun:      r.DryRun,
		Interrupted: r.Interrupted,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Duration:    r.Duration().String(),
		Totals:      r.Totals(),
		Units:       make([]jsonUnit, 0, len(r.Units)),
	}
	for _, u := range r.Units {
		ju := jsonUnit{
			Name:          u.Name,
			Path:          u.Path,
			ArchivePath:   u.ArchivePath,
			Archived:      u.Archived,
			ArchivedBytes: u.ArchivedBytes,
			Expired:       u.Expired,
			ExpiredBytes:  u.ExpiredBytes,
			Fresh:         u.Fresh,
			Skipped:       u.Skipped,
		}
		for _, err := range u.Errors {
			ju.Errors = append(ju.Errors, err.Error())
		}
		out.Units = append(out.Units, ju)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
