package archive

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

// verify reads every entry of the archive at path back and compares its
// digest with the one recorded while writing.
func (w *Writer) verify(path string, sums map[string]uint64) error {
	f, err := w.fs.Open(path)
	if err != nil {
		return fmt.Errorf("reopening archive: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}

	zr, err := zip.NewReader(f, st.Size())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerify, err)
	}
	if len(zr.File) != len(sums) {
		return fmt.Errorf("%w: %d entries, expected %d", ErrVerify, len(zr.File), len(sums))
	}

	for _, zf := range zr.File {
		want, ok := sums[zf.Name]
		if !ok {
			return fmt.Errorf("%w: unexpected entry %s", ErrVerify, zf.Name)
		}
		got, err := digest(zf)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %w", ErrVerify, zf.Name, err)
		}
		if got != want {
			return fmt.Errorf("%w: %s content mismatch", ErrVerify, zf.Name)
		}
	}
	return nil
}

func digest(zf *zip.File) (uint64, error) {
	rc, err := zf.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, rc); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
