package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/harvest"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ harvest.ResultService = (*ResultService)(nil)

// ResultService implements harvest.ResultService using SQLite.
type ResultService struct {
	db *DB
}

// NewResultService creates a new ResultService.
func NewResultService(db *DB) *ResultService {
	return &ResultService{db: db}
}

// CreateResult stores a new result. The field map is serialized to JSON and
// fingerprinted with xxhash so re-runs of the same URL can be compared
// cheaply without deserializing.
func (s *ResultService) CreateResult(ctx context.Context, result *harvest.MergedResult) error {
	if err := result.Validate(); err != nil {
		return err
	}

	result.ID = uuid.New().String()
	result.CreatedAt = time.Now().UTC()

	fields, err := json.Marshal(result.Fields)
	if err != nil {
		return fmt.Errorf("failed to marshal fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results (id, job_id, url, fields, content_hash, source, explanation, elapsed_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, result.ID, result.JobID, result.URL, string(fields), contentHash(fields),
		string(result.Source), result.Explanation, result.ElapsedMs,
		result.CreatedAt.Format(time.RFC3339))

	return err
}

// FindResultByID retrieves a result by ID.
func (s *ResultService) FindResultByID(ctx context.Context, id string) (*harvest.MergedResult, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, job_id, url, fields, source, explanation, elapsed_ms, created_at
		FROM results
		WHERE id = ?
	`, id)

	result, err := scanResult(row.Scan)
	if err == sql.ErrNoRows {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "result not found")
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FindResults retrieves results matching the filter.
func (s *ResultService) FindResults(ctx context.Context, filter harvest.ResultFilter) ([]*harvest.MergedResult, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, job_id, url, fields, source, explanation, elapsed_ms, created_at FROM results WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.JobID != nil {
		query.WriteString(" AND job_id = ?")
		args = append(args, *filter.JobID)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}
	if filter.Source != nil {
		query.WriteString(" AND source = ?")
		args = append(args, string(*filter.Source))
	}

	query.WriteString(" ORDER BY created_at DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*harvest.MergedResult
	for rows.Next() {
		result, err := scanResult(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, rows.Err()
}

// scanResult scans one result row using the given scan function.
func scanResult(scan func(dest ...any) error) (*harvest.MergedResult, error) {
	var result harvest.MergedResult
	var fields, source, createdAt string

	if err := scan(&result.ID, &result.JobID, &result.URL, &fields, &source,
		&result.Explanation, &result.ElapsedMs, &createdAt); err != nil {
		return nil, err
	}

	result.Source = harvest.Source(source)
	if err := json.Unmarshal([]byte(fields), &result.Fields); err != nil {
		return nil, fmt.Errorf("failed to parse fields: %w", err)
	}

	var err error
	if result.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
		return nil, err
	}

	return &result, nil
}

// contentHash returns the xxhash fingerprint of serialized fields.
func contentHash(fields []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(fields))
}
