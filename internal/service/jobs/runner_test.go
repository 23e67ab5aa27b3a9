package jobs

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ougirez/certzone/internal/domain"
	"github.com/ougirez/certzone/internal/pkg/constants"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHandler fails every file whose name contains "bad" and writes a log line per file.
type fakeHandler struct {
	mu    sync.Mutex
	calls []string
	block chan struct{}
}

func (h *fakeHandler) HandleResult(_ context.Context, file, schema, loggerName, loggerFile string) domain.FileResult {
	if h.block != nil {
		<-h.block
	}
	h.mu.Lock()
	h.calls = append(h.calls, file)
	h.mu.Unlock()

	_ = os.WriteFile(loggerFile, []byte(loggerName+" "+schema+" "+file+"\n"), 0o600)

	if strings.Contains(file, "bad") {
		return domain.FileResult{File: file, LogFile: loggerFile, Failure: domain.FailureStructural}
	}
	return domain.FileResult{File: file, LogFile: loggerFile, OK: true, Outcome: &domain.Outcome{}}
}

func waitDone(t *testing.T, r *Runner, id string) Job {
	t.Helper()
	var job Job
	require.Eventually(t, func() bool {
		var err error
		job, err = r.Get(id)
		require.NoError(t, err)
		return job.Status == StatusDone
	}, 5*time.Second, 10*time.Millisecond)
	return job
}

func TestRunner_ProcessesJob(t *testing.T) {
	dir := t.TempDir()
	h := &fakeHandler{}
	reg := prometheus.NewRegistry()
	r := NewRunner(h, Options{Schema: "schema.xsd", LogDir: dir, Workers: 2, ArchiveLog: true}, reg)
	r.Start(context.Background())

	id, err := r.Submit(context.Background(), []string{"/in/a.xml", "/in/bad.xml", "/in/c.xml"})
	require.NoError(t, err)

	job := waitDone(t, r, id)
	require.NoError(t, r.Close())

	assert.False(t, job.OK)
	require.Len(t, job.Results, 3)
	assert.True(t, job.Results[0].OK)
	assert.Equal(t, domain.FailureStructural, job.Results[1].Failure)
	assert.NotNil(t, job.FinishedAt)

	// порядок файлов внутри задачи сохраняется
	assert.Equal(t, []string{"/in/a.xml", "/in/bad.xml", "/in/c.xml"}, h.calls)

	for _, res := range job.Results {
		assert.Equal(t, dir, filepath.Dir(res.LogFile))
		assert.True(t, strings.HasPrefix(filepath.Base(res.LogFile), filepath.Base(res.File)+"-"))
		assert.True(t, strings.HasSuffix(res.LogFile, ".log"))
	}

	require.NotEmpty(t, job.Archive)
	assert.True(t, strings.HasSuffix(job.Archive, "-results.zip"))
	zr, err := zip.OpenReader(job.Archive)
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.metrics.filesProcessed.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.filesProcessed.WithLabelValues("structural")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.metrics.jobsQueued))
}

func TestRunner_SameBaseNameGetsOwnLog(t *testing.T) {
	dir := t.TempDir()
	r := NewRunner(&fakeHandler{}, Options{LogDir: dir, Workers: 1, ArchiveLog: true}, prometheus.NewRegistry())
	fixed := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }
	r.Start(context.Background())

	id, err := r.Submit(context.Background(), []string{"/uploads/a/center.xml", "/uploads/b/center.xml"})
	require.NoError(t, err)
	job := waitDone(t, r, id)
	require.NoError(t, r.Close())

	require.Len(t, job.Results, 2)
	first, second := job.Results[0].LogFile, job.Results[1].LogFile
	assert.NotEqual(t, first, second)

	body, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Contains(t, string(body), "/uploads/a/center.xml")
	assert.NotContains(t, string(body), "/uploads/b/center.xml")

	zr, err := zip.OpenReader(job.Archive)
	require.NoError(t, err)
	defer zr.Close()
	require.Len(t, zr.File, 2)
	assert.NotEqual(t, zr.File[0].Name, zr.File[1].Name)
}

func TestRunner_AllOK(t *testing.T) {
	r := NewRunner(&fakeHandler{}, Options{LogDir: t.TempDir(), Workers: 1}, prometheus.NewRegistry())
	r.Start(context.Background())
	defer r.Close()

	id, err := r.Submit(context.Background(), []string{"a.xml"})
	require.NoError(t, err)

	job := waitDone(t, r, id)
	assert.True(t, job.OK)
	assert.Empty(t, job.Archive)
}

func TestRunner_SubmitErrors(t *testing.T) {
	h := &fakeHandler{block: make(chan struct{})}
	r := NewRunner(h, Options{LogDir: t.TempDir(), Workers: 1, QueueSize: 1}, prometheus.NewRegistry())

	_, err := r.Submit(context.Background(), nil)
	assert.ErrorIs(t, err, constants.ErrEmptyFiles)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, constants.ErrJobNotFound)

	// воркеры не запущены, очередь на один элемент
	id, err := r.Submit(context.Background(), []string{"a.xml"})
	require.NoError(t, err)
	_, err = r.Submit(context.Background(), []string{"b.xml"})
	assert.ErrorIs(t, err, constants.ErrQueueFull)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.metrics.jobsQueued))

	job, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusQueued, job.Status)

	r.Start(context.Background())
	close(h.block)
	require.NoError(t, r.Close())

	_, err = r.Submit(context.Background(), []string{"c.xml"})
	assert.ErrorIs(t, err, constants.ErrRunnerClosed)

	job, err = r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, StatusDone, job.Status)
}
