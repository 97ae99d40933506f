// Package unit holds the archival data model: an ArchiveUnit is one
// immediate subdirectory of the scanned root together with its files.
package unit

import (
	"fmt"
	"time"
)

// DateLayout is the dd-mm-yy stamp used in archive names.
const DateLayout = "02-01-06"

type ArchiveUnit struct {
	Name  string // directory name, also the archive name prefix
	Path  string
	Files []FileEntry
	Err   error // set when the directory could not be read; Files is then empty
}

// ArchiveName returns "<Name>_<dd-mm-yy>.zip" for the run date.
func (u ArchiveUnit) ArchiveName(date time.Time) string {
	return fmt.Sprintf("%s_%s.zip", u.Name, date.Format(DateLayout))
}
