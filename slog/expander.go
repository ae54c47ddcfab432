package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// Ensure LoggingURLExpander implements harvest.URLExpander.
var _ harvest.URLExpander = (*LoggingURLExpander)(nil)

// LoggingURLExpander wraps a URLExpander with debug logging.
type LoggingURLExpander struct {
	next   harvest.URLExpander
	logger *slog.Logger
}

// NewLoggingURLExpander creates a new LoggingURLExpander.
func NewLoggingURLExpander(next harvest.URLExpander, logger *slog.Logger) *LoggingURLExpander {
	return &LoggingURLExpander{next: next, logger: logger}
}

// Expand delegates to the wrapped expander and logs the operation.
func (e *LoggingURLExpander) Expand(ctx context.Context, url string, maxPages int) (urls []string, err error) {
	defer func(begin time.Time) {
		e.logger.Info("url expansion",
			"url", url,
			"max_pages", maxPages,
			"count", len(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Expand(ctx, url, maxPages)
}
