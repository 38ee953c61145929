// Package crawl discovers price-list documents on vendor catalog sites.
// It walks the catalog within its own domain and collects links that point
// at downloadable documents, keeping discovery separate from the
// extraction pipeline itself.
package crawl

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/Johnny-Taake/docpipe/core"
)

// maxPages bounds the BFS so a pathological catalog cannot run away.
const maxPages = 100

// DiscoverDocuments walks the catalog starting at catalogURL and returns
// the document links found, in BFS order. When the start URL itself points
// at a document it is the sole result.
func DiscoverDocuments(ctx context.Context, catalogURL string, fetcher core.Fetcher) ([]string, error) {
	parsed, err := url.Parse(catalogURL)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog URL: %w", err)
	}
	domain := parsed.Host

	if IsDocumentLink(catalogURL) {
		return []string{NormalizeURL(catalogURL)}, nil
	}

	frontier := NewFrontier()
	frontier.Push(NormalizeURL(catalogURL))
	documents := NewLinkSet()

	for frontier.Visited() < maxPages {
		currentURL, ok := frontier.Pop()
		if !ok {
			break
		}

		result, err := fetcher.Fetch(ctx, currentURL)
		if err != nil {
			continue // Skip failed pages, don't block the crawl.
		}
		if ctx.Err() != nil {
			return documents.All(), ctx.Err()
		}

		links, err := extractLinks(string(result.Body), currentURL)
		if err != nil {
			continue
		}

		for _, link := range links {
			switch {
			case IsDocumentLink(link):
				documents.Add(NormalizeURL(link))
			case IsSameDomain(link, domain) && !IsStaticAsset(link):
				frontier.Push(NormalizeURL(link))
			}
		}
	}

	return documents.All(), nil
}

// extractLinks extracts all href values from <a> tags, resolving relative URLs.
func extractLinks(html string, baseURL string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	base, _ := url.Parse(baseURL)
	var links []string

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists || href == "" {
			return
		}

		resolved := resolveURL(href, base)
		if resolved != "" {
			links = append(links, resolved)
		}
	})

	return links, nil
}

// resolveURL resolves a potentially relative URL against a base.
func resolveURL(href string, base *url.URL) string {
	// Skip mailto, javascript, etc.
	if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "#") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(parsed)
	// Strip fragments.
	resolved.Fragment = ""
	return resolved.String()
}
