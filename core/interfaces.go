// Package core defines the data model and stage interfaces for the
// document extraction pipeline. Each stage is a clean, testable interface;
// the orchestrator in core/pipeline depends only on these contracts.
package core

import "context"

// FetchResult holds the bytes and metadata of a plainly downloaded document.
type FetchResult struct {
	URL         string
	ContentType string
	Body        []byte
}

// IsPDF reports whether the fetched body looks like a PDF document,
// by content type or magic header.
func (r *FetchResult) IsPDF() bool {
	if r.ContentType == "application/pdf" {
		return true
	}
	return len(r.Body) >= 5 && string(r.Body[:5]) == "%PDF-"
}

// ArtifactFormat is the on-disk format of a rendered artifact.
type ArtifactFormat string

const (
	ArtifactPDF ArtifactFormat = "pdf"
	ArtifactPNG ArtifactFormat = "png"
)

// RenderedArtifact is the output of a browser fetch: a printed PDF or a
// screenshot, plus metadata parsed from the rendered DOM when available.
// The browser session's scratch directory is removed before this is
// returned, so the artifact is carried by value.
type RenderedArtifact struct {
	Data     []byte
	Format   ArtifactFormat
	Title    string
	Markdown string // text sidecar of the rendered page, may be empty
}

// PageImage is one rasterized page at a fixed resolution.
type PageImage struct {
	Index  int // 0-based, order-significant
	Path   string
	Width  int
	Height int
	DPI    int
}

// Token is a single recognized word with its confidence in [0,1].
type Token struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// RecognizedText is the result of one OCR pass over one page image.
type RecognizedText struct {
	Text       string
	Tokens     []Token
	Confidence float64 // mean token confidence in [0,1]
}

// Fetcher downloads a remote document over plain HTTP.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Lease is an exclusive-access token for the shared virtual display.
// Release is idempotent and must be called on every exit path.
type Lease interface {
	Release()
}

// DisplayArbiter serializes access to the single virtual display surface.
// Acquire blocks in FIFO order. ctx spans the holder's whole operation,
// not just the wait: implementations reclaim the lease when it ends, and
// bound the queue wait themselves.
type DisplayArbiter interface {
	Acquire(ctx context.Context) (Lease, error)
}

// Renderer drives a headless browser to fetch and render one reference.
// The caller must hold a display lease for the duration of the call.
type Renderer interface {
	Fetch(ctx context.Context, ref string, lease Lease) (*RenderedArtifact, error)
}

// PageSequence is a lazy, finite, non-restartable sequence of page images.
// Next returns io.EOF after the last page.
type PageSequence interface {
	Count() int
	Next(ctx context.Context) (*PageImage, error)
}

// Rasterizer converts a paginated document into ordered page images.
// All intermediates are written under workDir, the document's scoped
// temporary directory, which the caller removes when done.
type Rasterizer interface {
	Open(ctx context.Context, documentBytes []byte, dpi int, workDir string) (PageSequence, error)
}

// Recognizer runs one OCR pass over one page image. The languages list is
// tried as a single combined pass, not sequential fallbacks. Calls are
// stateless and safe to dispatch in parallel.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string, languages []string) (*RecognizedText, error)
}

// TableExtractor pulls tabular structure out of a whole document,
// independent of the OCR path. Strictly best-effort.
type TableExtractor interface {
	Extract(ctx context.Context, documentBytes []byte) ([]StructuredRecord, error)
}

// ResultRenderer converts a finished Document into a final output format.
type ResultRenderer interface {
	Render(doc *Document) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".json").
	Extension() string
}
