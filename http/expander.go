package http

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/beevik/etree"
	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/bloom"
)

// expanderFilterSize sizes the dedup filter for URL expansion. Pagination
// chains and single sitemaps rarely exceed a few thousand URLs.
const expanderFilterSize = 10000

// Ensure Expander implements harvest.URLExpander at compile time.
var _ harvest.URLExpander = (*Expander)(nil)

// Expander expands a target URL into the set of pages to process. Sitemap
// URLs expand into the URLs they list; regular pages expand by following
// rel="next" pagination links. Both paths are bounded by maxPages and
// deduplicated with a Bloom filter.
type Expander struct {
	client *http.Client
}

// NewExpander creates a new Expander with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewExpander(client *http.Client) *Expander {
	if client == nil {
		client = http.DefaultClient
	}
	return &Expander{client: client}
}

// Expand returns the URLs to process for target, the target itself first.
// Expansion is best-effort beyond the first page: a failure mid-chain
// truncates the result rather than erroring.
func (e *Expander) Expand(ctx context.Context, target string, maxPages int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if maxPages <= 0 {
		maxPages = 1
	}

	if isSitemapURL(target) {
		return e.expandSitemap(ctx, target, maxPages)
	}
	return e.followPagination(ctx, target, maxPages)
}

// isSitemapURL reports whether the URL points at a sitemap document.
func isSitemapURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	path := strings.ToLower(parsed.Path)
	return strings.Contains(path, "sitemap") || strings.HasSuffix(path, ".xml")
}

// expandSitemap fetches a sitemap and returns up to maxPages of the URLs it
// lists. Sitemap indexes are resolved recursively.
func (e *Expander) expandSitemap(ctx context.Context, sitemapURL string, maxPages int) ([]string, error) {
	seenSitemaps := make(map[string]bool)
	filter := bloom.NewFilter(expanderFilterSize, 0.01)

	urls, err := e.processSitemap(ctx, sitemapURL, seenSitemaps, filter, maxPages)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		// A sitemap with no usable entries degrades to the target itself.
		urls = []string{sitemapURL}
	}
	return urls, nil
}

// processSitemap fetches and parses one sitemap document, handling both
// urlset and sitemapindex roots.
func (e *Expander) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool, filter *bloom.Filter, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := e.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "parsing sitemap XML from %s: %v", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, harvest.Errorf(harvest.EINVALID, "empty sitemap XML at %s", sitemapURL)
	}

	if root.Tag == "sitemapindex" {
		var all []string
		for _, child := range root.SelectElements("sitemap") {
			if len(all) >= limit {
				break
			}
			loc := child.SelectElement("loc")
			if loc == nil {
				continue
			}
			childURL := strings.TrimSpace(loc.Text())
			if childURL == "" {
				continue
			}
			urls, err := e.processSitemap(ctx, childURL, seen, filter, limit-len(all))
			if err != nil {
				// A broken child sitemap truncates, it doesn't fail the index.
				continue
			}
			all = append(all, urls...)
		}
		return all, nil
	}

	var urls []string
	for _, urlEl := range root.SelectElements("url") {
		if len(urls) >= limit {
			break
		}
		loc := urlEl.SelectElement("loc")
		if loc == nil {
			continue
		}
		u := strings.TrimSpace(loc.Text())
		if u == "" || filter.Test(u) {
			continue
		}
		filter.Add(u)
		urls = append(urls, u)
	}
	return urls, nil
}

// followPagination walks rel="next" links starting from target, returning
// the chain up to maxPages URLs. The target is always first.
func (e *Expander) followPagination(ctx context.Context, target string, maxPages int) ([]string, error) {
	filter := bloom.NewFilter(expanderFilterSize, 0.01)
	filter.Add(target)
	urls := []string{target}

	current := target
	for len(urls) < maxPages {
		if err := ctx.Err(); err != nil {
			return urls, nil
		}
		next, err := e.nextLink(ctx, current)
		if err != nil || next == "" {
			break
		}
		// Bloom dedup guards against pagination loops.
		if filter.Test(next) {
			break
		}
		filter.Add(next)
		urls = append(urls, next)
		current = next
	}
	return urls, nil
}

// nextLink fetches pageURL and returns its rel="next" link resolved to an
// absolute URL, or "" when the page has none.
func (e *Expander) nextLink(ctx context.Context, pageURL string) (string, error) {
	body, err := e.get(ctx, pageURL)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", err
	}

	raw, ok := doc.Find(`link[rel="next"]`).Attr("href")
	if !ok {
		raw, ok = doc.Find(`a[rel="next"]`).Attr("href")
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return "", nil
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// get fetches a URL and returns the response body as a string.
func (e *Expander) get(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", harvest.Errorf(harvest.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, targetURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}
