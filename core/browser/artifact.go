// Rendered-DOM sidecar parsing: isolates the main content of the rendered
// page and converts it to Markdown so text-bearing pages keep a searchable
// rendition next to the OCR output.
package browser

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are DOM elements removed before the markdown conversion.
// These contribute nothing to the document text.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
}

// parseDOM extracts the page title and a markdown rendition of the main
// content from a rendered DOM dump. Both are best-effort; on any parse
// failure it returns empty strings.
func parseDOM(html string) (title, markdown string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", ""
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	// Best content container in priority order: <main>, then <article>,
	// then <body>.
	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		if sel := doc.Find(tag); sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		return title, ""
	}

	fragment, err := goquery.OuterHtml(content)
	if err != nil {
		return title, ""
	}
	md, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return title, ""
	}
	return title, strings.TrimSpace(md)
}
