package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.ResultService = (*ResultService)(nil)

// ResultService is a mock implementation of harvest.ResultService.
type ResultService struct {
	CreateResultFn   func(ctx context.Context, result *harvest.MergedResult) error
	FindResultByIDFn func(ctx context.Context, id string) (*harvest.MergedResult, error)
	FindResultsFn    func(ctx context.Context, filter harvest.ResultFilter) ([]*harvest.MergedResult, error)
}

func (s *ResultService) CreateResult(ctx context.Context, result *harvest.MergedResult) error {
	return s.CreateResultFn(ctx, result)
}

func (s *ResultService) FindResultByID(ctx context.Context, id string) (*harvest.MergedResult, error) {
	return s.FindResultByIDFn(ctx, id)
}

func (s *ResultService) FindResults(ctx context.Context, filter harvest.ResultFilter) ([]*harvest.MergedResult, error) {
	return s.FindResultsFn(ctx, filter)
}
