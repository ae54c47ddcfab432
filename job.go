package harvest

import (
	"context"
	"time"
)

// JobStatus represents the lifecycle state of a job.
type JobStatus string

// Job lifecycle states. Jobs move pending -> running -> completed|failed.
const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// JobSettings controls how a job's URLs are expanded and processed.
type JobSettings struct {
	// MaxPages bounds pagination/sitemap expansion per target URL.
	MaxPages int `json:"maxPages"`

	// BatchDelay is awaited between batches, not between individual URLs.
	BatchDelay time.Duration `json:"batchDelayMs"`

	// Timeout bounds each page fetch and completion call.
	Timeout time.Duration `json:"timeoutMs"`

	// FollowPagination enables rel=next expansion of target URLs.
	FollowPagination bool `json:"followPagination"`
}

// JobTotals holds job-level progress counters. They are updated atomically
// with respect to concurrent URL completions within a batch.
type JobTotals struct {
	Total     int `json:"total"`
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Job represents one extraction run over a set of target URLs.
type Job struct {
	ID           string      `json:"id"`
	TargetURLs   []string    `json:"targetUrls"`
	Instructions string      `json:"instructions,omitempty"`
	Status       JobStatus   `json:"status"`
	Totals       JobTotals   `json:"totals"`
	Settings     JobSettings `json:"settings"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Validate returns an error if the job contains invalid fields.
func (j *Job) Validate() error {
	if len(j.TargetURLs) == 0 {
		return Errorf(EINVALID, "job target URLs required")
	}
	for _, u := range j.TargetURLs {
		if u == "" {
			return Errorf(EINVALID, "job target URL must not be empty")
		}
	}
	return nil
}

// JobFilter represents a filter for FindJobs.
type JobFilter struct {
	ID     *string    `json:"id"`
	Status *JobStatus `json:"status"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// JobService manages job records and their progress counters.
type JobService interface {
	// CreateJob creates a new job in the pending state.
	CreateJob(ctx context.Context, job *Job) error

	// FindJobByID retrieves a job by ID.
	// Returns ENOTFOUND if the job does not exist.
	FindJobByID(ctx context.Context, id string) (*Job, error)

	// FindJobs retrieves jobs matching the filter.
	FindJobs(ctx context.Context, filter JobFilter) ([]*Job, error)

	// UpdateJobStatus transitions the job to the given status.
	// Returns ENOTFOUND if the job does not exist.
	UpdateJobStatus(ctx context.Context, id string, status JobStatus) error

	// UpdateJobProgress overwrites the job's progress counters.
	// Returns ENOTFOUND if the job does not exist.
	UpdateJobProgress(ctx context.Context, id string, totals JobTotals) error

	// DeleteJob permanently removes a job and its results and error logs.
	// Returns ENOTFOUND if the job does not exist.
	DeleteJob(ctx context.Context, id string) error
}

// PageError records a per-URL failure inside a job.
type PageError struct {
	ID        string    `json:"id"`
	JobID     string    `json:"jobId"`
	URL       string    `json:"url"`
	Stage     string    `json:"stage"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// PageErrorService persists per-URL failure logs.
type PageErrorService interface {
	// CreatePageError stores a page error log entry.
	CreatePageError(ctx context.Context, e *PageError) error

	// FindPageErrors retrieves error logs for a job.
	FindPageErrors(ctx context.Context, jobID string) ([]*PageError, error)
}
