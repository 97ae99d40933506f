// Package retention decides what happens to a file based on its age and
// removes the files that are past the delete threshold.
package retention

import "time"

type Classification int

const (
	Fresh Classification = iota
	Archivable
	Expired
)

func (c Classification) String() string {
	switch c {
	case Fresh:
		return "fresh"
	case Archivable:
		return "archivable"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

const day = 24 * time.Hour

// Classify is pure. Expired wins over Archivable; a zero deleteThreshold
// disables expiry.
func Classify(modTime, now time.Time, archiveThresholdDays int, deleteThreshold time.Time) Classification {
	if !deleteThreshold.IsZero() && modTime.Before(deleteThreshold) {
		return Expired
	}
	if now.Sub(modTime) >= time.Duration(archiveThresholdDays)*day {
		return Archivable
	}
	return Fresh
}

// Policy bundles the two thresholds of a run.
type Policy struct {
	ArchiveAfterDays int
	DeleteBefore     time.Time
}

func (p Policy) Classify(modTime, now time.Time) Classification {
	return Classify(modTime, now, p.ArchiveAfterDays, p.DeleteBefore)
}

// DeleteBeforeDays turns "older than n days" into an absolute threshold
// at local midnight of the day n days before now. n <= 0 disables expiry.
func DeleteBeforeDays(now time.Time, n int) time.Time {
	if n <= 0 {
		return time.Time{}
	}
	d := now.AddDate(0, 0, -n)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}
