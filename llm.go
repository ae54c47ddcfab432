package harvest

import "context"

// CompletionClient is the capability boundary to a language-model backend.
// The decision engine depends only on this interface, which makes it
// trivial to substitute a deterministic stub in tests.
type CompletionClient interface {
	// Complete submits a prompt and unmarshals the model's structured
	// response into result, which must be a pointer. Quota, timeout, and
	// malformed-response failures are returned as errors; callers convert
	// them to failure outcomes rather than propagating them raw.
	Complete(ctx context.Context, prompt string, result any) error

	// GenerateText submits a prompt and returns plain text, bounded by
	// maxTokens. Used for content cleaning and summary generation, both
	// best-effort.
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
}
