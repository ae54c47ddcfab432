package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/harvest"
)

// LLM extractor tuning.
const (
	// DefaultMaxContentChars bounds the content excerpt included in prompts.
	DefaultMaxContentChars = 8000

	// truncationMarker is appended when content exceeds the excerpt limit.
	truncationMarker = "\n[content truncated]"

	// cleanedMarker is appended to the explanation when the cleaned-content
	// fallback produced the winning outcome.
	cleanedMarker = " (re-extracted from cleaned content)"

	// fallbackThreshold is the primary-pass confidence below which the
	// clean-content fallback is attempted.
	fallbackThreshold = 0.5

	// cleanMaxTokens bounds the content-cleaning text completion.
	cleanMaxTokens = 2048

	// summaryMaxTokens bounds the summary text completion.
	summaryMaxTokens = 256
)

// llmResult is the structured-completion response schema for extraction.
type llmResult struct {
	ExtractedData map[string]any `json:"extractedData"`
	Confidence    float64        `json:"confidence"`
	Explanation   string         `json:"explanation"`
	DataQuality   string         `json:"dataQuality,omitempty"`
	MissingFields []string       `json:"missingFields,omitempty"`
}

// LLMExtractor wraps a completion backend with extraction, content-cleaning,
// and summary prompts. All failures are converted to failure outcomes at the
// call site; Extract never returns an error to the caller.
type LLMExtractor struct {
	// Client is the completion backend. Required.
	Client harvest.CompletionClient

	// MaxContentChars bounds the content excerpt. Zero means
	// DefaultMaxContentChars.
	MaxContentChars int

	// Logger receives fallback and summary failure records. Nil means
	// slog.Default().
	Logger *slog.Logger
}

// Extract runs the structured extraction pass against content. When the
// primary pass comes back with low confidence, the content is cleaned via a
// text completion and extraction is re-run; whichever pass scored higher
// wins. Fallback failures silently preserve the primary result.
func (e *LLMExtractor) Extract(ctx context.Context, content, instructions, url string) *harvest.LLMOutcome {
	begin := time.Now()

	primary := e.extractOnce(ctx, content, instructions, url)
	primary.ElapsedMs = time.Since(begin).Milliseconds()
	if primary.Confidence >= fallbackThreshold {
		return primary
	}

	cleaned, err := e.cleanContent(ctx, content)
	if err != nil {
		e.logger().Warn("content cleaning failed", "url", url, "error", err)
		return primary
	}

	fallback := e.extractOnce(ctx, cleaned, instructions, url)
	if fallback.Confidence <= primary.Confidence {
		return primary
	}
	fallback.Explanation += cleanedMarker
	fallback.ElapsedMs = time.Since(begin).Milliseconds()
	return fallback
}

// extractOnce performs a single structured extraction pass.
func (e *LLMExtractor) extractOnce(ctx context.Context, content, instructions, url string) *harvest.LLMOutcome {
	begin := time.Now()

	prompt := e.buildExtractionPrompt(content, instructions, url)

	var result llmResult
	if err := e.Client.Complete(ctx, prompt, &result); err != nil {
		return &harvest.LLMOutcome{
			Success:    false,
			Fields:     harvest.FieldMap{},
			Confidence: 0,
			Errors:     []string{err.Error()},
			ElapsedMs:  time.Since(begin).Milliseconds(),
		}
	}

	fields := make(harvest.FieldMap, len(result.ExtractedData))
	for k, v := range result.ExtractedData {
		if v == nil {
			continue
		}
		fields[k] = v
	}

	confidence := clamp01(result.Confidence)

	return &harvest.LLMOutcome{
		Success:     confidence > SuccessThreshold,
		Fields:      fields,
		Confidence:  confidence,
		Explanation: result.Explanation,
		ElapsedMs:   time.Since(begin).Milliseconds(),
	}
}

// cleanContent asks the text-completion variant to strip navigation, ads,
// and boilerplate from the content.
func (e *LLMExtractor) cleanContent(ctx context.Context, content string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Clean the following web page content. Remove navigation menus, advertisements, cookie banners, footers, and other boilerplate. Keep every piece of substantive information. Return only the cleaned text.\n\n")
	sb.WriteString("<content>\n")
	sb.WriteString(e.excerpt(content))
	sb.WriteString("\n</content>")

	cleaned, err := e.Client.GenerateText(ctx, sb.String(), cleanMaxTokens)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(cleaned) == "" {
		return "", harvest.Errorf(harvest.EINTERNAL, "cleaning returned empty content")
	}
	return cleaned, nil
}

// Summarize produces a 1-2 sentence synopsis of the merged field map. It is
// best-effort: on any failure it falls back to a deterministic template.
func (e *LLMExtractor) Summarize(ctx context.Context, fields harvest.FieldMap, url string) string {
	fieldCount := len(fields)
	if _, ok := fields[harvest.SourcesKey]; ok {
		fieldCount--
	}

	var sb strings.Builder
	sb.WriteString("Write a 1-2 sentence human-readable summary of the data extracted from a web page.\n\n")
	fmt.Fprintf(&sb, "<url>%s</url>\n", url)
	sb.WriteString("<fields>\n")
	for k, v := range fields {
		if k == harvest.SourcesKey {
			continue
		}
		fmt.Fprintf(&sb, "%s: %v\n", k, v)
	}
	sb.WriteString("</fields>")

	summary, err := e.Client.GenerateText(ctx, sb.String(), summaryMaxTokens)
	if err != nil || strings.TrimSpace(summary) == "" {
		if err != nil {
			e.logger().Warn("summary generation failed", "url", url, "error", err)
		}
		return fmt.Sprintf("Extracted %d fields from %s", fieldCount, url)
	}
	return strings.TrimSpace(summary)
}

// buildExtractionPrompt builds the structured extraction prompt containing
// the URL, the instructions, and a bounded content excerpt.
func (e *LLMExtractor) buildExtractionPrompt(content, instructions, url string) string {
	var sb strings.Builder
	sb.WriteString("Extract structured data from the following web page content.\n\n")
	fmt.Fprintf(&sb, "<url>%s</url>\n", url)
	fmt.Fprintf(&sb, "<instructions>%s</instructions>\n", instructions)
	sb.WriteString("<content>\n")
	sb.WriteString(e.excerpt(content))
	sb.WriteString("\n</content>\n\n")
	sb.WriteString("Respond with JSON: extractedData (an object mapping field names to values; omit fields you cannot find, never use null), confidence (0-1), explanation (one sentence), and optionally dataQuality and missingFields.")
	return sb.String()
}

// excerpt bounds content to the configured character limit, appending a
// truncation marker when content was cut.
func (e *LLMExtractor) excerpt(content string) string {
	limit := e.MaxContentChars
	if limit <= 0 {
		limit = DefaultMaxContentChars
	}
	if len(content) <= limit {
		return content
	}
	return content[:limit] + truncationMarker
}

func (e *LLMExtractor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
