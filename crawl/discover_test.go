package crawl

import (
	"context"
	"errors"
	"testing"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// siteFetcher serves canned HTML pages keyed by URL.
type siteFetcher struct {
	pages   map[string]string
	visited []string
}

func (f *siteFetcher) Fetch(ctx context.Context, url string) (*core.FetchResult, error) {
	f.visited = append(f.visited, url)
	body, ok := f.pages[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return &core.FetchResult{URL: url, ContentType: "text/html", Body: []byte(body)}, nil
}

func TestDiscoverDocuments(t *testing.T) {
	fetcher := &siteFetcher{pages: map[string]string{
		"https://vitrina.example.com": `
			<a href="/catalog">Catalog</a>
			<a href="/prices/july.pdf">July prices</a>
			<a href="https://other.com/external.html">elsewhere</a>
			<a href="mailto:sales@vitrina.example.com">contact</a>
			<a href="/logo.png">logo</a>`,
		"https://vitrina.example.com/catalog": `
			<a href="/prices/july.pdf">July again</a>
			<a href="../prices/august.pdf">August</a>
			<a href="#top">top</a>`,
	}}

	docs, err := DiscoverDocuments(context.Background(), "https://vitrina.example.com/", fetcher)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://vitrina.example.com/prices/july.pdf",
		"https://vitrina.example.com/prices/august.pdf",
	}, docs, "duplicates collapse, BFS order is kept")

	// The static asset and the off-domain page must not be crawled.
	assert.NotContains(t, fetcher.visited, "https://vitrina.example.com/logo.png")
	for _, v := range fetcher.visited {
		assert.NotContains(t, v, "other.com")
	}
}

func TestDiscoverDirectDocumentLink(t *testing.T) {
	fetcher := &siteFetcher{pages: map[string]string{}}
	docs, err := DiscoverDocuments(context.Background(), "https://vitrina.example.com/prices.pdf", fetcher)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://vitrina.example.com/prices.pdf"}, docs)
	assert.Empty(t, fetcher.visited, "a direct document link needs no crawl")
}

func TestDiscoverToleratesFetchFailures(t *testing.T) {
	fetcher := &siteFetcher{pages: map[string]string{
		"https://vitrina.example.com": `
			<a href="/broken">broken</a>
			<a href="/ok">ok</a>`,
		"https://vitrina.example.com/ok": `<a href="/prices.pdf">prices</a>`,
	}}

	docs, err := DiscoverDocuments(context.Background(), "https://vitrina.example.com", fetcher)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://vitrina.example.com/prices.pdf"}, docs)
}

func TestDiscoverStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &siteFetcher{pages: map[string]string{
		"https://vitrina.example.com": `<a href="/a">a</a><a href="/b">b</a>`,
	}}
	cancel()

	_, err := DiscoverDocuments(ctx, "https://vitrina.example.com", fetcher)
	assert.ErrorIs(t, err, context.Canceled)
}
