package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/dir-archiver/internal/fs"
	"github.com/raoulx24/dir-archiver/internal/fs/faultfs"
	"github.com/raoulx24/dir-archiver/internal/logging"
	"github.com/raoulx24/dir-archiver/internal/unit"
)

var runDate = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.Local)

// makeUnit writes files under root/name and returns the unit with entries.
func makeUnit(t *testing.T, root, name string, files map[string][]byte) unit.ArchiveUnit {
	t.Helper()
	dir := filepath.Join(root, name)
	u := unit.ArchiveUnit{Name: name, Path: dir}
	for rel, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))

		info, err := fs.New().Stat(path)
		require.NoError(t, err)
		e, err := unit.FromFileInfo(dir, info)
		require.NoError(t, err)
		u.Files = append(u.Files, e)
	}
	return u
}

func readZip(t *testing.T, path string) map[string][]byte {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	out := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		out[f.Name] = data
	}
	return out
}

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	b := make([]byte, n)
	_, err := rand.Read(b)
	require.NoError(t, err)
	return b
}

func TestWriteRoundTrip(t *testing.T) {
	root := t.TempDir()
	content := map[string][]byte{
		"a.txt":          []byte("hello"),
		"2024/jan/b.bin": randomBytes(t, 32*1024),
		"empty.dat":      {},
	}
	u := makeUnit(t, root, "Photos", content)

	out := New(fs.New(), logging.Discard(), Options{}).Write(context.Background(), u, u.Files, runDate)

	require.NoError(t, out.Err)
	assert.True(t, out.Written)
	assert.Equal(t, filepath.Join(root, "Photos", "Photos_18-10-26.zip"), out.Path)
	assert.Equal(t, 3, out.Entries)
	assert.EqualValues(t, 5+32*1024, out.Bytes)

	got := readZip(t, out.Path)
	require.Len(t, got, len(content))
	for rel, data := range content {
		assert.True(t, bytes.Equal(data, got[rel]), "entry %s differs", rel)
	}

	// sources untouched, no temp file left
	for _, f := range u.Files {
		assert.FileExists(t, f.Path)
	}
	assert.NoFileExists(t, tempName(out.Path))
}

func TestWriteNothingToDo(t *testing.T) {
	out := New(fs.New(), logging.Discard(), Options{}).Write(context.Background(), unit.ArchiveUnit{Name: "x"}, nil, runDate)
	assert.False(t, out.Written)
	assert.NoError(t, out.Err)
	assert.Empty(t, out.Path)
}

func TestWriteOutputDir(t *testing.T) {
	root := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "archives")
	u := makeUnit(t, root, "Logs", map[string][]byte{"a.log": []byte("a")})

	out := New(fs.New(), logging.Discard(), Options{OutputDir: outDir}).Write(context.Background(), u, u.Files, runDate)

	require.NoError(t, out.Err)
	assert.Equal(t, filepath.Join(outDir, "Logs_18-10-26.zip"), out.Path)
	assert.FileExists(t, out.Path)
}

func TestWriteCollisionSuffix(t *testing.T) {
	root := t.TempDir()
	u := makeUnit(t, root, "Logs", map[string][]byte{"a.log": []byte("a")})
	existing := filepath.Join(u.Path, "Logs_18-10-26.zip")
	require.NoError(t, os.WriteFile(existing, []byte("previous"), 0o644))

	w := New(fs.New(), logging.Discard(), Options{OnCollision: CollisionSuffix})
	first := w.Write(context.Background(), u, u.Files, runDate)
	second := w.Write(context.Background(), u, u.Files, runDate)

	require.NoError(t, first.Err)
	require.NoError(t, second.Err)
	assert.Equal(t, filepath.Join(u.Path, "Logs_18-10-26_1.zip"), first.Path)
	assert.Equal(t, filepath.Join(u.Path, "Logs_18-10-26_2.zip"), second.Path)

	prev, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(prev))
}

func TestWriteCollisionFail(t *testing.T) {
	root := t.TempDir()
	u := makeUnit(t, root, "Logs", map[string][]byte{"a.log": []byte("a")})
	existing := filepath.Join(u.Path, "Logs_18-10-26.zip")
	require.NoError(t, os.WriteFile(existing, []byte("previous"), 0o644))

	out := New(fs.New(), logging.Discard(), Options{OnCollision: CollisionFail}).Write(context.Background(), u, u.Files, runDate)

	assert.False(t, out.Written)
	assert.ErrorIs(t, out.Err, ErrAlreadyExists)
	prev, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(prev))
}

func TestWriteDiskFullLeavesNothing(t *testing.T) {
	root := t.TempDir()
	u := makeUnit(t, root, "Video", map[string][]byte{
		"a.bin": randomBytes(t, 64*1024),
		"b.bin": randomBytes(t, 64*1024),
	})

	full := faultfs.NewNoSpace(afero.NewOsFs(), 16*1024, func(name string) bool {
		return strings.HasSuffix(name, ".zip.tmp")
	})
	out := New(fs.Wrap(full), logging.Discard(), Options{}).Write(context.Background(), u, u.Files, runDate)

	assert.False(t, out.Written)
	require.Error(t, out.Err)
	assert.True(t, fs.IsNoSpace(out.Err), "got %v", out.Err)

	entries, err := os.ReadDir(u.Path)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.Contains(e.Name(), ".zip"), "left behind %s", e.Name())
	}
	for _, f := range u.Files {
		assert.FileExists(t, f.Path)
	}
}

func TestWriteCorruptArchiveFailsVerification(t *testing.T) {
	root := t.TempDir()
	u := makeUnit(t, root, "Scans", map[string][]byte{"f.bin": randomBytes(t, 64*1024)})

	// damage the compressed data just past the first local file header
	corrupt := faultfs.NewCorrupt(afero.NewOsFs(), 50, 56, func(name string) bool {
		return strings.HasSuffix(name, ".zip.tmp")
	})
	out := New(fs.Wrap(corrupt), logging.Discard(), Options{}).Write(context.Background(), u, u.Files, runDate)

	assert.False(t, out.Written)
	assert.ErrorIs(t, out.Err, ErrVerify)
	assert.NoFileExists(t, out.Path)
	assert.NoFileExists(t, tempName(out.Path))
	for _, f := range u.Files {
		assert.FileExists(t, f.Path)
	}
}

func TestWriteMissingSourceFails(t *testing.T) {
	root := t.TempDir()
	u := makeUnit(t, root, "Docs", map[string][]byte{"a.txt": []byte("a")})
	require.NoError(t, os.Remove(u.Files[0].Path))

	out := New(fs.New(), logging.Discard(), Options{}).Write(context.Background(), u, u.Files, runDate)

	assert.False(t, out.Written)
	assert.ErrorIs(t, out.Err, os.ErrNotExist)
	assert.NoFileExists(t, out.Path)
	assert.NoFileExists(t, tempName(out.Path))
}

func TestWriteCanceled(t *testing.T) {
	root := t.TempDir()
	u := makeUnit(t, root, "Docs", map[string][]byte{"a.txt": []byte("a")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := New(fs.New(), logging.Discard(), Options{}).Write(ctx, u, u.Files, runDate)

	assert.False(t, out.Written)
	assert.ErrorIs(t, out.Err, context.Canceled)
	assert.NoFileExists(t, tempName(filepath.Join(u.Path, "Docs_18-10-26.zip")))
}

func TestWriteInMemory(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/root/Notes/n.md", []byte("# notes"), 0o644))
	filesystem := fs.Wrap(mem)

	info, err := filesystem.Stat("/root/Notes/n.md")
	require.NoError(t, err)
	e, err := unit.FromFileInfo("/root/Notes", info)
	require.NoError(t, err)
	u := unit.ArchiveUnit{Name: "Notes", Path: "/root/Notes", Files: []unit.FileEntry{e}}

	out := New(filesystem, logging.Discard(), Options{}).Write(context.Background(), u, u.Files, runDate)

	require.NoError(t, out.Err)
	ok, err := filesystem.Exists("/root/Notes/Notes_18-10-26.zip")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsArtifact(t *testing.T) {
	tests := []struct {
		rel  string
		want bool
	}{
		{"Photos_18-10-26.zip", true},
		{"Photos_01-02-03_4.zip", true},
		{".Photos_18-10-26.zip.tmp", true},
		{"Photos_18-10-2026.zip", false},
		{"Other_18-10-26.zip", false},
		{"sub/Photos_18-10-26.zip", false},
		{"holiday.zip", false},
		{"Photos_18-10-26.zip.bak", false},
	}

	m := NewArtifactMatcher("Photos")
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.rel))
			assert.Equal(t, tt.want, IsArtifact("Photos", tt.rel))
		})
	}
}
