package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	harvesthttp "github.com/fwojciec/harvest/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpander_Expand_Sitemap(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url><loc>https://example.com/a</loc></url>
	<url><loc>https://example.com/b</loc></url>
	<url><loc>https://example.com/a</loc></url>
	<url><loc>https://example.com/c</loc></url>
</urlset>`)
	}))
	t.Cleanup(srv.Close)

	expander := harvesthttp.NewExpander(nil)
	urls, err := expander.Expand(context.Background(), srv.URL+"/sitemap.xml", 10)
	require.NoError(t, err)

	// Duplicates inside the sitemap are dropped.
	assert.Equal(t, []string{
		"https://example.com/a",
		"https://example.com/b",
		"https://example.com/c",
	}, urls)
}

func TestExpander_Expand_SitemapIndex(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<sitemap><loc>%s/sitemap-products.xml</loc></sitemap>
</sitemapindex>`, srv.URL)
	})
	mux.HandleFunc("/sitemap-products.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url><loc>https://example.com/p/1</loc></url>
	<url><loc>https://example.com/p/2</loc></url>
</urlset>`)
	})

	expander := harvesthttp.NewExpander(nil)
	urls, err := expander.Expand(context.Background(), srv.URL+"/sitemap.xml", 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/p/1", "https://example.com/p/2"}, urls)
}

func TestExpander_Expand_SitemapRespectsMaxPages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
	<url><loc>https://example.com/1</loc></url>
	<url><loc>https://example.com/2</loc></url>
	<url><loc>https://example.com/3</loc></url>
	<url><loc>https://example.com/4</loc></url>
</urlset>`)
	}))
	t.Cleanup(srv.Close)

	expander := harvesthttp.NewExpander(nil)
	urls, err := expander.Expand(context.Background(), srv.URL+"/sitemap.xml", 2)
	require.NoError(t, err)

	assert.Len(t, urls, 2)
}

func TestExpander_Expand_Pagination(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "", "1":
			fmt.Fprint(w, `<html><head><link rel="next" href="/list?page=2"></head><body>page 1</body></html>`)
		case "2":
			fmt.Fprint(w, `<html><body><a rel="next" href="/list?page=3">next</a></body></html>`)
		default:
			fmt.Fprint(w, `<html><body>last page</body></html>`)
		}
	})

	expander := harvesthttp.NewExpander(nil)
	urls, err := expander.Expand(context.Background(), srv.URL+"/list", 10)
	require.NoError(t, err)

	// The target is always first; the chain stops where rel=next ends.
	assert.Equal(t, []string{
		srv.URL + "/list",
		srv.URL + "/list?page=2",
		srv.URL + "/list?page=3",
	}, urls)
}

func TestExpander_Expand_PaginationRespectsMaxPages(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	var n int
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		n++
		fmt.Fprintf(w, `<html><head><link rel="next" href="/list?page=%d"></head></html>`, n+1)
	})

	expander := harvesthttp.NewExpander(nil)
	urls, err := expander.Expand(context.Background(), srv.URL+"/list", 3)
	require.NoError(t, err)

	assert.Len(t, urls, 3)
}

func TestExpander_Expand_PaginationLoopDetected(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		// rel=next points back at the same page forever.
		fmt.Fprint(w, `<html><head><link rel="next" href="/list"></head></html>`)
	})

	expander := harvesthttp.NewExpander(nil)
	urls, err := expander.Expand(context.Background(), srv.URL+"/list", 10)
	require.NoError(t, err)

	assert.Equal(t, []string{srv.URL + "/list"}, urls)
}

func TestExpander_Expand_NoNextLink(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>single page</body></html>`)
	}))
	t.Cleanup(srv.Close)

	expander := harvesthttp.NewExpander(nil)
	urls, err := expander.Expand(context.Background(), srv.URL+"/page", 10)
	require.NoError(t, err)

	assert.Equal(t, []string{srv.URL + "/page"}, urls)
}
