package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ harvest.JobService = (*JobService)(nil)

// JobService implements harvest.JobService using SQLite.
type JobService struct {
	db *DB
}

// NewJobService creates a new JobService.
func NewJobService(db *DB) *JobService {
	return &JobService{db: db}
}

// CreateJob creates a new job in the pending state.
func (s *JobService) CreateJob(ctx context.Context, job *harvest.Job) error {
	if err := job.Validate(); err != nil {
		return err
	}

	job.ID = uuid.New().String()
	if job.Status == "" {
		job.Status = harvest.JobPending
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now

	targetURLs, err := json.Marshal(job.TargetURLs)
	if err != nil {
		return fmt.Errorf("failed to marshal target URLs: %w", err)
	}
	settings, err := json.Marshal(job.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, target_urls, instructions, status, total, processed, succeeded, failed, settings, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, string(targetURLs), job.Instructions, string(job.Status),
		job.Totals.Total, job.Totals.Processed, job.Totals.Succeeded, job.Totals.Failed,
		string(settings), job.CreatedAt.Format(time.RFC3339), job.UpdatedAt.Format(time.RFC3339))

	return err
}

// FindJobByID retrieves a job by ID.
func (s *JobService) FindJobByID(ctx context.Context, id string) (*harvest.Job, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, target_urls, instructions, status, total, processed, succeeded, failed, settings, created_at, updated_at
		FROM jobs
		WHERE id = ?
	`, id)

	job, err := scanJob(row.Scan)
	if err == sql.ErrNoRows {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "job not found")
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// FindJobs retrieves jobs matching the filter.
func (s *JobService) FindJobs(ctx context.Context, filter harvest.JobFilter) ([]*harvest.Job, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, target_urls, instructions, status, total, processed, succeeded, failed, settings, created_at, updated_at FROM jobs WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Status != nil {
		query.WriteString(" AND status = ?")
		args = append(args, string(*filter.Status))
	}

	query.WriteString(" ORDER BY created_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*harvest.Job
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// UpdateJobStatus transitions the job to the given status.
func (s *JobService) UpdateJobStatus(ctx context.Context, id string, status harvest.JobStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	return requireRows(result, "job not found")
}

// UpdateJobProgress overwrites the job's progress counters.
func (s *JobService) UpdateJobProgress(ctx context.Context, id string, totals harvest.JobTotals) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE jobs SET total = ?, processed = ?, succeeded = ?, failed = ?, updated_at = ? WHERE id = ?
	`, totals.Total, totals.Processed, totals.Succeeded, totals.Failed,
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	return requireRows(result, "job not found")
}

// DeleteJob permanently removes a job. Results and page errors cascade.
func (s *JobService) DeleteJob(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM jobs WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireRows(result, "job not found")
}

// scanJob scans one job row using the given scan function.
func scanJob(scan func(dest ...any) error) (*harvest.Job, error) {
	var job harvest.Job
	var targetURLs, settings, status, createdAt, updatedAt string

	if err := scan(&job.ID, &targetURLs, &job.Instructions, &status,
		&job.Totals.Total, &job.Totals.Processed, &job.Totals.Succeeded, &job.Totals.Failed,
		&settings, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	job.Status = harvest.JobStatus(status)
	if err := json.Unmarshal([]byte(targetURLs), &job.TargetURLs); err != nil {
		return nil, fmt.Errorf("failed to parse target_urls: %w", err)
	}
	if err := json.Unmarshal([]byte(settings), &job.Settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	var err error
	if job.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if job.UpdatedAt, err = parseRFC3339(updatedAt, "updated_at"); err != nil {
		return nil, err
	}

	return &job, nil
}

// requireRows returns ENOTFOUND if the statement affected no rows.
func requireRows(result sql.Result, message string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return harvest.Errorf(harvest.ENOTFOUND, "%s", message)
	}
	return nil
}
