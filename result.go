package harvest

import (
	"context"
	"time"
)

// FieldMap maps field names to extracted values. Values are strings, string
// slices, or numbers; after a JSON round-trip slices decode as []any and
// numbers as float64. A field that produced no value is absent from the map,
// never present with a nil value.
type FieldMap map[string]any

// Keys returns the field names in unspecified order.
func (m FieldMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// SourcesKey is the provenance sub-map key injected into merged fields.
const SourcesKey = "_extraction_sources"

// Source identifies which extraction path produced a result.
type Source string

// Extraction sources.
const (
	SourceParser Source = "parser"
	SourceLLM    Source = "llm"
	SourceHybrid Source = "hybrid"
	SourceFailed Source = "failed"
)

// ParseOutcome is the immutable result of one rule-based extraction pass.
type ParseOutcome struct {
	Success         bool     `json:"success"`
	Fields          FieldMap `json:"fields"`
	Confidence      float64  `json:"confidence"`
	ContextSnippets []string `json:"contextSnippets,omitempty"`
	Errors          []string `json:"errors,omitempty"`
	ElapsedMs       int64    `json:"elapsedMs"`
}

// LLMOutcome is the immutable result of one language-model extraction pass.
type LLMOutcome struct {
	Success     bool     `json:"success"`
	Fields      FieldMap `json:"fields"`
	Confidence  float64  `json:"confidence"`
	Explanation string   `json:"explanation,omitempty"`
	Errors      []string `json:"errors,omitempty"`
	ElapsedMs   int64    `json:"elapsedMs"`
}

// MergedResult is the terminal artifact of per-URL processing, handed to the
// persistence layer.
type MergedResult struct {
	ID          string    `json:"id"`
	JobID       string    `json:"jobId"`
	URL         string    `json:"url"`
	Fields      FieldMap  `json:"fields"`
	Source      Source    `json:"source"`
	Explanation string    `json:"explanation,omitempty"`
	ElapsedMs   int64     `json:"elapsedMs"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the result contains invalid fields.
func (r *MergedResult) Validate() error {
	if r.JobID == "" {
		return Errorf(EINVALID, "result job ID required")
	}
	if r.URL == "" {
		return Errorf(EINVALID, "result URL required")
	}
	if r.Source == "" {
		return Errorf(EINVALID, "result source required")
	}
	return nil
}

// ResultFilter represents a filter for FindResults.
type ResultFilter struct {
	ID     *string `json:"id"`
	JobID  *string `json:"jobId"`
	URL    *string `json:"url"`
	Source *Source `json:"source"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ResultService persists and retrieves merged extraction results.
type ResultService interface {
	// CreateResult stores a new result.
	CreateResult(ctx context.Context, result *MergedResult) error

	// FindResultByID retrieves a result by ID.
	// Returns ENOTFOUND if the result does not exist.
	FindResultByID(ctx context.Context, id string) (*MergedResult, error)

	// FindResults retrieves results matching the filter.
	FindResults(ctx context.Context, filter ResultFilter) ([]*MergedResult, error)
}
