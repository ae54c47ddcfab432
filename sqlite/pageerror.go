package sqlite

import (
	"context"
	"time"

	"github.com/fwojciec/harvest"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ harvest.PageErrorService = (*PageErrorService)(nil)

// PageErrorService implements harvest.PageErrorService using SQLite.
type PageErrorService struct {
	db *DB
}

// NewPageErrorService creates a new PageErrorService.
func NewPageErrorService(db *DB) *PageErrorService {
	return &PageErrorService{db: db}
}

// CreatePageError stores a page error log entry.
func (s *PageErrorService) CreatePageError(ctx context.Context, e *harvest.PageError) error {
	if e.JobID == "" {
		return harvest.Errorf(harvest.EINVALID, "page error job ID required")
	}
	if e.URL == "" {
		return harvest.Errorf(harvest.EINVALID, "page error URL required")
	}

	e.ID = uuid.New().String()
	e.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO page_errors (id, job_id, url, stage, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.JobID, e.URL, e.Stage, e.Message, e.CreatedAt.Format(time.RFC3339))

	return err
}

// FindPageErrors retrieves error logs for a job, oldest first.
func (s *PageErrorService) FindPageErrors(ctx context.Context, jobID string) ([]*harvest.PageError, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job_id, url, stage, message, created_at
		FROM page_errors
		WHERE job_id = ?
		ORDER BY created_at ASC
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errs []*harvest.PageError
	for rows.Next() {
		var e harvest.PageError
		var createdAt string
		if err := rows.Scan(&e.ID, &e.JobID, &e.URL, &e.Stage, &e.Message, &createdAt); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		errs = append(errs, &e)
	}

	return errs, rows.Err()
}
