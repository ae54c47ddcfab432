package harvest_test

import (
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := harvest.Errorf(harvest.ENOTFOUND, "job %q not found", "test")

	assert.Equal(t, harvest.ENOTFOUND, harvest.ErrorCode(err))
	assert.Equal(t, "job \"test\" not found", harvest.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, harvest.ErrorCode(nil))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, harvest.ErrorMessage(nil))
}

func TestJob_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid job", func(t *testing.T) {
		t.Parallel()

		job := &harvest.Job{TargetURLs: []string{"https://example.com"}}
		assert.NoError(t, job.Validate())
	})

	t.Run("missing target URLs", func(t *testing.T) {
		t.Parallel()

		job := &harvest.Job{}
		err := job.Validate()
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})

	t.Run("empty target URL", func(t *testing.T) {
		t.Parallel()

		job := &harvest.Job{TargetURLs: []string{"https://example.com", ""}}
		err := job.Validate()
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}

func TestMergedResult_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid result", func(t *testing.T) {
		t.Parallel()

		r := &harvest.MergedResult{JobID: "job-1", URL: "https://example.com", Source: harvest.SourceParser}
		assert.NoError(t, r.Validate())
	})

	t.Run("missing job ID", func(t *testing.T) {
		t.Parallel()

		r := &harvest.MergedResult{URL: "https://example.com", Source: harvest.SourceParser}
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(r.Validate()))
	})

	t.Run("missing URL", func(t *testing.T) {
		t.Parallel()

		r := &harvest.MergedResult{JobID: "job-1", Source: harvest.SourceParser}
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(r.Validate()))
	})

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()

		r := &harvest.MergedResult{JobID: "job-1", URL: "https://example.com"}
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(r.Validate()))
	})
}
