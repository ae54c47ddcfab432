package main_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	main "github.com/fwojciec/harvest/cmd/harvest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestMain returns a Main backed by a temp-file database.
func newTestMain(t *testing.T) *main.Main {
	t.Helper()

	m := main.NewMain()
	m.DBPath = filepath.Join(t.TempDir(), "harvest.db")
	return m
}

func TestMain_Run_EndToEnd(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>
<head><title>Widget Pro</title><meta name="description" content="A widget."></head>
<body>
<h1>Widget Pro</h1>
<p>The Widget Pro is a professional-grade widget built for daily workshop use.</p>
<a href="/specs">Specs</a>
<img src="/widget.jpg">
</body>
</html>`)
	}))
	t.Cleanup(srv.Close)

	dbPath := filepath.Join(t.TempDir(), "harvest.db")
	ctx := context.Background()

	// run: rule-based extraction only, no expansion.
	runMain := main.NewMain()
	runMain.DBPath = dbPath
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := runMain.Run(ctx, []string{"run", "--no-llm", srv.URL + "/widget"}, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "started (1 URLs)")
	assert.Contains(t, stdout.String(), "completed: 1 processed, 1 succeeded, 0 failed")

	// jobs: the completed job is listed.
	jobsMain := main.NewMain()
	jobsMain.DBPath = dbPath
	stdout.Reset()
	err = jobsMain.Run(ctx, []string{"jobs"}, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "completed")
	assert.Contains(t, stdout.String(), "1/1 ok")

	jobID := strings.Fields(stdout.String())[0]

	// results: the parser result is shown for the job.
	resultsMain := main.NewMain()
	resultsMain.DBPath = dbPath
	stdout.Reset()
	err = resultsMain.Run(ctx, []string{"results", jobID, "--full"}, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), srv.URL+"/widget")
	assert.Contains(t, stdout.String(), "parser")
	assert.Contains(t, stdout.String(), "Widget Pro")

	// delete: removes the job and its results.
	deleteMain := main.NewMain()
	deleteMain.DBPath = dbPath
	stdout.Reset()
	err = deleteMain.Run(ctx, []string{"delete", jobID, "--force"}, stdout, stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "Deleted job")
}

func TestMain_Run_JobsEmpty(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"jobs"}, stdout, stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "No jobs found")
}

func TestMain_Run_JobsRejectsUnknownStatus(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"jobs", "--status", "bogus"}, stdout, stderr)

	require.Error(t, err)
	assert.Contains(t, stderr.String(), "unknown status")
}

func TestMain_Run_ResultsUnknownJob(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"results", "no-such-job"}, stdout, stderr)

	require.Error(t, err)
	assert.Contains(t, stderr.String(), "not found")
}

func TestMain_Run_DeleteRequiresForce(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"delete", "some-job"}, stdout, stderr)

	require.Error(t, err)
	assert.Contains(t, stderr.String(), "--force")
}

func TestMain_Run_DeleteUnknownJob(t *testing.T) {
	t.Parallel()

	m := newTestMain(t)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	err := m.Run(context.Background(), []string{"delete", "no-such-job", "--force"}, stdout, stderr)

	require.Error(t, err)
	assert.Contains(t, stderr.String(), "not found")
}
