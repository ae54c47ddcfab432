package harvest

import "context"

// PageExtract holds the pre-processed content of a fetched page. It is
// produced by a PageFetcher and is a read-only input to extraction.
type PageExtract struct {
	URL             string   `json:"url"`
	Text            string   `json:"text"`
	Headings        []string `json:"headings"`
	Links           []string `json:"links"`
	Images          []string `json:"images"`
	Markdown        string   `json:"markdown"`
	TitleMeta       string   `json:"titleMeta,omitempty"`
	DescriptionMeta string   `json:"descriptionMeta,omitempty"`
}

// PageFetcher retrieves a URL and converts it into a PageExtract.
// Implementations hide HTTP transport, content extraction, and markdown
// conversion. A network, timeout, or non-success status failure is returned
// as an error; callers treat any error as "no page extract available".
type PageFetcher interface {
	// Fetch retrieves and converts the page at url.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*PageExtract, error)
}

// URLExpander expands a target URL into the sequence of page URLs to
// process. Implementations handle pagination chains and sitemap indexes;
// the first returned URL is always the target itself.
type URLExpander interface {
	// Expand returns at most maxPages URLs starting from url.
	Expand(ctx context.Context, url string, maxPages int) ([]string, error)
}
