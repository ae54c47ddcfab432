package mock

import (
	"context"

	"github.com/fwojciec/harvest"
)

var _ harvest.PageFetcher = (*PageFetcher)(nil)

// PageFetcher is a mock implementation of harvest.PageFetcher.
type PageFetcher struct {
	FetchFn func(ctx context.Context, url string) (*harvest.PageExtract, error)
}

func (f *PageFetcher) Fetch(ctx context.Context, url string) (*harvest.PageExtract, error) {
	return f.FetchFn(ctx, url)
}

var _ harvest.URLExpander = (*URLExpander)(nil)

// URLExpander is a mock implementation of harvest.URLExpander.
type URLExpander struct {
	ExpandFn func(ctx context.Context, url string, maxPages int) ([]string, error)
}

func (e *URLExpander) Expand(ctx context.Context, url string, maxPages int) ([]string, error) {
	return e.ExpandFn(ctx, url, maxPages)
}
