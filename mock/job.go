package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.JobService = (*JobService)(nil)

// JobService is a mock implementation of harvest.JobService.
type JobService struct {
	CreateJobFn         func(ctx context.Context, job *harvest.Job) error
	FindJobByIDFn       func(ctx context.Context, id string) (*harvest.Job, error)
	FindJobsFn          func(ctx context.Context, filter harvest.JobFilter) ([]*harvest.Job, error)
	UpdateJobStatusFn   func(ctx context.Context, id string, status harvest.JobStatus) error
	UpdateJobProgressFn func(ctx context.Context, id string, totals harvest.JobTotals) error
	DeleteJobFn         func(ctx context.Context, id string) error
}

func (s *JobService) CreateJob(ctx context.Context, job *harvest.Job) error {
	return s.CreateJobFn(ctx, job)
}

func (s *JobService) FindJobByID(ctx context.Context, id string) (*harvest.Job, error) {
	return s.FindJobByIDFn(ctx, id)
}

func (s *JobService) FindJobs(ctx context.Context, filter harvest.JobFilter) ([]*harvest.Job, error) {
	return s.FindJobsFn(ctx, filter)
}

func (s *JobService) UpdateJobStatus(ctx context.Context, id string, status harvest.JobStatus) error {
	return s.UpdateJobStatusFn(ctx, id, status)
}

func (s *JobService) UpdateJobProgress(ctx context.Context, id string, totals harvest.JobTotals) error {
	return s.UpdateJobProgressFn(ctx, id, totals)
}

func (s *JobService) DeleteJob(ctx context.Context, id string) error {
	return s.DeleteJobFn(ctx, id)
}

var _ harvest.PageErrorService = (*PageErrorService)(nil)

// PageErrorService is a mock implementation of harvest.PageErrorService.
type PageErrorService struct {
	CreatePageErrorFn func(ctx context.Context, e *harvest.PageError) error
	FindPageErrorsFn  func(ctx context.Context, jobID string) ([]*harvest.PageError, error)
}

func (s *PageErrorService) CreatePageError(ctx context.Context, e *harvest.PageError) error {
	return s.CreatePageErrorFn(ctx, e)
}

func (s *PageErrorService) FindPageErrors(ctx context.Context, jobID string) ([]*harvest.PageError, error) {
	return s.FindPageErrorsFn(ctx, jobID)
}
