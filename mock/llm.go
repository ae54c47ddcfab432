package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.CompletionClient = (*CompletionClient)(nil)

// CompletionClient is a mock implementation of harvest.CompletionClient.
type CompletionClient struct {
	CompleteFn     func(ctx context.Context, prompt string, result any) error
	GenerateTextFn func(ctx context.Context, prompt string, maxTokens int) (string, error)
}

func (c *CompletionClient) Complete(ctx context.Context, prompt string, result any) error {
	return c.CompleteFn(ctx, prompt, result)
}

func (c *CompletionClient) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return c.GenerateTextFn(ctx, prompt, maxTokens)
}
