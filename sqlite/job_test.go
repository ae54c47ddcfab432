package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreateJob(t *testing.T, db *sqlite.DB, job *harvest.Job) *harvest.Job {
	t.Helper()

	require.NoError(t, sqlite.NewJobService(db).CreateJob(context.Background(), job))
	return job
}

func TestJobService_CreateJob(t *testing.T) {
	t.Parallel()

	t.Run("assigns ID and timestamps", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		s := sqlite.NewJobService(db)

		job := &harvest.Job{
			TargetURLs:   []string{"https://example.com/a", "https://example.com/b"},
			Instructions: "get the price",
			Settings:     harvest.JobSettings{MaxPages: 3, FollowPagination: true},
		}
		require.NoError(t, s.CreateJob(context.Background(), job))

		assert.NotEmpty(t, job.ID)
		assert.Equal(t, harvest.JobPending, job.Status)
		assert.False(t, job.CreatedAt.IsZero())
	})

	t.Run("rejects invalid job", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		s := sqlite.NewJobService(db)

		err := s.CreateJob(context.Background(), &harvest.Job{})
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}

func TestJobService_FindJobByID(t *testing.T) {
	t.Parallel()

	t.Run("round-trips all fields", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		s := sqlite.NewJobService(db)

		created := mustCreateJob(t, db, &harvest.Job{
			TargetURLs:   []string{"https://example.com/a"},
			Instructions: "get the price",
			Settings: harvest.JobSettings{
				MaxPages:         7,
				BatchDelay:       2 * time.Second,
				Timeout:          10 * time.Second,
				FollowPagination: true,
			},
		})

		found, err := s.FindJobByID(context.Background(), created.ID)
		require.NoError(t, err)

		assert.Equal(t, created.ID, found.ID)
		assert.Equal(t, []string{"https://example.com/a"}, found.TargetURLs)
		assert.Equal(t, "get the price", found.Instructions)
		assert.Equal(t, harvest.JobPending, found.Status)
		assert.Equal(t, created.Settings, found.Settings)
	})

	t.Run("returns ENOTFOUND for unknown ID", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		s := sqlite.NewJobService(db)

		_, err := s.FindJobByID(context.Background(), "missing")
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
	})
}

func TestJobService_FindJobs(t *testing.T) {
	t.Parallel()

	db := MustOpenDB(t)
	s := sqlite.NewJobService(db)
	ctx := context.Background()

	a := mustCreateJob(t, db, &harvest.Job{TargetURLs: []string{"https://example.com/a"}})
	b := mustCreateJob(t, db, &harvest.Job{TargetURLs: []string{"https://example.com/b"}})
	require.NoError(t, s.UpdateJobStatus(ctx, b.ID, harvest.JobCompleted))

	t.Run("no filter returns all", func(t *testing.T) {
		jobs, err := s.FindJobs(ctx, harvest.JobFilter{})
		require.NoError(t, err)
		assert.Len(t, jobs, 2)
	})

	t.Run("filters by status", func(t *testing.T) {
		status := harvest.JobCompleted
		jobs, err := s.FindJobs(ctx, harvest.JobFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, b.ID, jobs[0].ID)
	})

	t.Run("filters by ID", func(t *testing.T) {
		jobs, err := s.FindJobs(ctx, harvest.JobFilter{ID: &a.ID})
		require.NoError(t, err)
		require.Len(t, jobs, 1)
		assert.Equal(t, a.ID, jobs[0].ID)
	})

	t.Run("applies limit", func(t *testing.T) {
		jobs, err := s.FindJobs(ctx, harvest.JobFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, jobs, 1)
	})
}

func TestJobService_UpdateJobStatus(t *testing.T) {
	t.Parallel()

	t.Run("persists the transition", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		s := sqlite.NewJobService(db)
		ctx := context.Background()

		job := mustCreateJob(t, db, &harvest.Job{TargetURLs: []string{"https://example.com/a"}})
		require.NoError(t, s.UpdateJobStatus(ctx, job.ID, harvest.JobRunning))

		found, err := s.FindJobByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, harvest.JobRunning, found.Status)
	})

	t.Run("returns ENOTFOUND for unknown ID", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		s := sqlite.NewJobService(db)

		err := s.UpdateJobStatus(context.Background(), "missing", harvest.JobRunning)
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
	})
}

func TestJobService_UpdateJobProgress(t *testing.T) {
	t.Parallel()

	db := MustOpenDB(t)
	s := sqlite.NewJobService(db)
	ctx := context.Background()

	job := mustCreateJob(t, db, &harvest.Job{TargetURLs: []string{"https://example.com/a"}})
	totals := harvest.JobTotals{Total: 4, Processed: 4, Succeeded: 3, Failed: 1}
	require.NoError(t, s.UpdateJobProgress(ctx, job.ID, totals))

	found, err := s.FindJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, totals, found.Totals)
}

func TestJobService_DeleteJob(t *testing.T) {
	t.Parallel()

	t.Run("deletes job and cascades to results and page errors", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		ctx := context.Background()
		jobs := sqlite.NewJobService(db)
		results := sqlite.NewResultService(db)
		pageErrors := sqlite.NewPageErrorService(db)

		job := mustCreateJob(t, db, &harvest.Job{TargetURLs: []string{"https://example.com/a"}})
		require.NoError(t, results.CreateResult(ctx, &harvest.MergedResult{
			JobID:  job.ID,
			URL:    "https://example.com/a",
			Fields: harvest.FieldMap{"title": "x"},
			Source: harvest.SourceParser,
		}))
		require.NoError(t, pageErrors.CreatePageError(ctx, &harvest.PageError{
			JobID: job.ID,
			URL:   "https://example.com/b",
			Stage: "fetch",
		}))

		require.NoError(t, jobs.DeleteJob(ctx, job.ID))

		_, err := jobs.FindJobByID(ctx, job.ID)
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))

		found, err := results.FindResults(ctx, harvest.ResultFilter{JobID: &job.ID})
		require.NoError(t, err)
		assert.Empty(t, found)

		errs, err := pageErrors.FindPageErrors(ctx, job.ID)
		require.NoError(t, err)
		assert.Empty(t, errs)
	})

	t.Run("returns ENOTFOUND for unknown ID", func(t *testing.T) {
		t.Parallel()

		db := MustOpenDB(t)
		s := sqlite.NewJobService(db)

		err := s.DeleteJob(context.Background(), "missing")
		assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
	})
}
