package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/harvest"
)

// Ensure LoggingCompletionClient implements harvest.CompletionClient.
var _ harvest.CompletionClient = (*LoggingCompletionClient)(nil)

// LoggingCompletionClient wraps a CompletionClient with debug logging.
type LoggingCompletionClient struct {
	next   harvest.CompletionClient
	logger *slog.Logger
}

// NewLoggingCompletionClient creates a new LoggingCompletionClient.
func NewLoggingCompletionClient(next harvest.CompletionClient, logger *slog.Logger) *LoggingCompletionClient {
	return &LoggingCompletionClient{next: next, logger: logger}
}

// Complete delegates to the wrapped client and logs the operation.
func (c *LoggingCompletionClient) Complete(ctx context.Context, prompt string, result any) (err error) {
	defer func(begin time.Time) {
		c.logger.Info("completion",
			"prompt_bytes", len(prompt),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Complete(ctx, prompt, result)
}

// GenerateText delegates to the wrapped client and logs the operation.
func (c *LoggingCompletionClient) GenerateText(ctx context.Context, prompt string, maxTokens int) (text string, err error) {
	defer func(begin time.Time) {
		c.logger.Info("text generation",
			"prompt_bytes", len(prompt),
			"max_tokens", maxTokens,
			"response_bytes", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.GenerateText(ctx, prompt, maxTokens)
}
