package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/dir-archiver/internal/report"
)

func run(failed bool) report.RunResult {
	start := time.Unix(1_700_000_000, 0)
	r := report.RunResult{
		ID:         "r",
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
		Units: []report.UnitResult{
			{Name: "a", Archived: 3, ArchivedBytes: 300, Expired: 1, ExpiredBytes: 10},
			{Name: "b", Skipped: true},
		},
	}
	if failed {
		r.Units[1].Errors = []error{errors.New("denied")}
	}
	return r
}

func TestObserveCounts(t *testing.T) {
	m := New("test")
	m.Observe(run(false))
	m.Observe(run(true))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runsTotal.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.unitsTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unitsTotal.WithLabelValues("skipped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.unitsTotal.WithLabelValues("failed")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.filesTotal.WithLabelValues("archived")))
	assert.Equal(t, 600.0, testutil.ToFloat64(m.bytesTotal.WithLabelValues("archived")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal))
	assert.Equal(t, 1_700_000_002.0, testutil.ToFloat64(m.lastSuccessTime))
}

func TestWriteTextfile(t *testing.T) {
	m := New("dir_archiver")
	m.Observe(run(false))

	path := filepath.Join(t.TempDir(), "dir_archiver.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `dir_archiver_runs_total{result="ok"} 1`)
	assert.Contains(t, out, `dir_archiver_files_total{action="expired"} 1`)
	assert.Contains(t, out, "dir_archiver_run_duration_seconds_count 1")
}

func TestHandlerServesMetrics(t *testing.T) {
	m := New("dir_archiver")
	m.Observe(run(false))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(string(body), "dir_archiver_units_total"))
}
