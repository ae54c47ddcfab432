package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/harvest"
	harvesthttp "github.com/fwojciec/harvest/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productHTML = `<!DOCTYPE html>
<html>
<head>
	<title>Widget Pro - Example Store</title>
	<meta name="description" content="Professional-grade widget for daily use.">
</head>
<body>
	<nav><a href="/">Home</a></nav>
	<h1>Widget Pro</h1>
	<h2>Specifications</h2>
	<p>The Widget Pro is a professional-grade widget built for daily workshop use. Priced at $29.99.</p>
	<img src="/img/widget.jpg" alt="Widget Pro">
	<a href="/shop/widget-mini">Widget Mini</a>
	<a href="https://external.example.org/review">Review</a>
	<a href="#details">Details</a>
</body>
</html>`

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(productHTML))
	}))
	t.Cleanup(srv.Close)

	fetcher := harvesthttp.NewFetcher()
	page, err := fetcher.Fetch(context.Background(), srv.URL+"/shop/widget-pro")
	require.NoError(t, err)

	assert.Equal(t, srv.URL+"/shop/widget-pro", page.URL)
	assert.Equal(t, []string{"Widget Pro", "Specifications"}, page.Headings)
	assert.Equal(t, "Widget Pro - Example Store", page.TitleMeta)
	assert.Equal(t, "Professional-grade widget for daily use.", page.DescriptionMeta)
	assert.Contains(t, page.Text, "professional-grade widget")

	// Relative URLs are resolved against the page; fragment-only links are
	// dropped.
	assert.Contains(t, page.Links, srv.URL+"/shop/widget-mini")
	assert.Contains(t, page.Links, "https://external.example.org/review")
	assert.Contains(t, page.Images, srv.URL+"/img/widget.jpg")
	for _, link := range page.Links {
		assert.NotContains(t, link, "#")
	}
}

func TestFetcher_Fetch_Non200(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	fetcher := harvesthttp.NewFetcher()
	_, err := fetcher.Fetch(context.Background(), srv.URL+"/missing")

	require.Error(t, err)
	assert.Equal(t, harvest.EUNAVAILABLE, harvest.ErrorCode(err))
	assert.Contains(t, harvest.ErrorMessage(err), "404")
}

func TestFetcher_Fetch_ContextCanceled(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(productHTML))
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := harvesthttp.NewFetcher()
	_, err := fetcher.Fetch(ctx, srv.URL)

	assert.Error(t, err)
}
