// Package http provides HTTP-based implementations of harvest.PageFetcher
// and harvest.URLExpander for static sites that don't require JavaScript
// rendering.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/harvest"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// userAgent identifies the fetcher to remote servers.
const userAgent = "harvest/1.0 (+https://github.com/fwojciec/harvest)"

// Ensure Fetcher implements harvest.PageFetcher at compile time.
var _ harvest.PageFetcher = (*Fetcher)(nil)

// Fetcher retrieves pages over HTTP and converts them into PageExtracts:
// main text via trafilatura, structure (headings, links, images, metadata)
// via goquery, and markdown via html-to-markdown.
type Fetcher struct {
	client  *http.Client
	conv    *converter.Converter
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithClient sets the HTTP client, overriding the timeout-derived default.
func WithClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}

	return f
}

// Fetch retrieves the page at url and converts it into a PageExtract.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*harvest.PageExtract, error) {
	rawHTML, err := f.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return f.convert(pageURL, rawHTML)
}

// get performs the HTTP request and returns the response body.
func (f *Fetcher) get(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", harvest.Errorf(harvest.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// convert builds a PageExtract from raw HTML.
func (f *Fetcher) convert(pageURL, rawHTML string) (*harvest.PageExtract, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, harvest.Errorf(harvest.EINVALID, "invalid URL %q", pageURL)
	}

	page := &harvest.PageExtract{
		URL:             pageURL,
		Headings:        headings(doc),
		Links:           attrURLs(doc, "a", "href", base),
		Images:          attrURLs(doc, "img", "src", base),
		TitleMeta:       titleMeta(doc),
		DescriptionMeta: descriptionMeta(doc),
	}

	// Main text and markdown come from trafilatura's boilerplate-free
	// content node; the whole body is the fallback when extraction fails.
	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback: true,
		OriginalURL:    base,
	})
	if err == nil && result != nil {
		page.Text = result.ContentText
		if page.TitleMeta == "" {
			page.TitleMeta = result.Metadata.Title
		}
		if page.DescriptionMeta == "" {
			page.DescriptionMeta = result.Metadata.Description
		}
		if result.ContentNode != nil {
			if contentHTML, rerr := renderNode(result.ContentNode); rerr == nil {
				if md, merr := f.conv.ConvertString(contentHTML); merr == nil {
					page.Markdown = md
				}
			}
		}
	}
	if page.Text == "" {
		page.Text = strings.TrimSpace(doc.Find("body").Text())
	}
	if page.Markdown == "" {
		if md, merr := f.conv.ConvertString(rawHTML); merr == nil {
			page.Markdown = md
		}
	}

	return page, nil
}

// headings returns h1-h3 text in document order.
func headings(doc *goquery.Document) []string {
	var out []string
	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			out = append(out, text)
		}
	})
	return out
}

// attrURLs collects absolute http(s) URLs from the given attribute,
// resolving relative references against base. Duplicates are dropped,
// keeping first occurrence order.
func attrURLs(doc *goquery.Document, selector, attr string, base *url.URL) []string {
	seen := make(map[string]bool)
	var out []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		raw, ok := s.Attr(attr)
		if !ok || raw == "" || strings.HasPrefix(raw, "#") {
			return
		}
		ref, err := url.Parse(raw)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		resolved.Fragment = ""
		u := resolved.String()
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	})
	return out
}

// titleMeta returns the page title from og:title or <title>.
func titleMeta(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// descriptionMeta returns the page description from meta tags.
func descriptionMeta(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if v, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
