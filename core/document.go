// Document model and result schema. Field names and types are stable:
// new optional fields may be added, none removed, so downstream consumers
// can rely on the serialized form.
package core

import "time"

// DocumentStatus tracks a document through the pipeline state machine.
type DocumentStatus string

const (
	StatusPending        DocumentStatus = "pending"
	StatusRasterizing    DocumentStatus = "rasterizing"
	StatusRunning        DocumentStatus = "running"
	StatusSuccess        DocumentStatus = "success"
	StatusPartialSuccess DocumentStatus = "partial_success"
	StatusFailed         DocumentStatus = "failed"
)

// PageStatus tracks one page through recognition.
type PageStatus string

const (
	PageUnprocessed PageStatus = "unprocessed"
	PageRecognized  PageStatus = "recognized"
	PageFailed      PageStatus = "failed"
)

// Page is one unit of rasterized image content subject to OCR.
// DocumentID is a lookup reference only; pages never own their document.
type Page struct {
	DocumentID    string     `json:"documentId"`
	Index         int        `json:"index"` // 0-based, contiguous within a document
	ImagePath     string     `json:"-"`     // intermediate artifact, not part of the result
	Status        PageStatus `json:"status"`
	Text          string     `json:"text,omitempty"`
	Tokens        []Token    `json:"tokens,omitempty"`
	Confidence    float64    `json:"confidence"`
	Languages     []string   `json:"languages,omitempty"`
	Retries       int        `json:"retries"`
	LowConfidence bool       `json:"lowConfidence,omitempty"`
	Error         string     `json:"error,omitempty"`
}

// StructuredRecord is one extracted table: ordered rows of ordered cells.
type StructuredRecord struct {
	DocumentID string     `json:"documentId"`
	TableIndex int        `json:"tableIndex"`
	Rows       [][]string `json:"rows"`
	Provenance string     `json:"provenance"` // extractor name/version
}

// Document is one ingestion unit and the pipeline's single result value.
// Only the orchestrator mutates it; after merging it is immutable.
type Document struct {
	ID           string             `json:"documentId"`
	Source       string             `json:"source"`
	Title        string             `json:"title,omitempty"`
	RenderedText string             `json:"renderedText,omitempty"` // markdown sidecar for browser-rendered pages
	Status       DocumentStatus     `json:"status"`
	Pages        []Page             `json:"pages"`
	Tables       []StructuredRecord `json:"tables,omitempty"`
	Confidence   float64            `json:"confidence"`
	Annotations  map[string]string  `json:"annotations,omitempty"` // non-terminal stage errors
	StartedAt    time.Time          `json:"startedAt"`
	FinishedAt   time.Time          `json:"finishedAt"`
}

// Annotate records a non-terminal stage error on the document.
func (d *Document) Annotate(stage, detail string) {
	if d.Annotations == nil {
		d.Annotations = make(map[string]string)
	}
	d.Annotations[stage] = detail
}

// RecomputeStatus derives the terminal status from page states:
// success iff every page recognized, failed iff none recognized,
// partial success for a mix. Documents with zero pages are failed.
func (d *Document) RecomputeStatus() {
	recognized, failed := 0, 0
	for _, p := range d.Pages {
		switch p.Status {
		case PageRecognized:
			recognized++
		case PageFailed:
			failed++
		}
	}
	switch {
	case len(d.Pages) == 0 || recognized == 0:
		d.Status = StatusFailed
	case failed == 0:
		d.Status = StatusSuccess
	default:
		d.Status = StatusPartialSuccess
	}
}

// RecomputeConfidence sets the aggregated confidence to the mean over
// recognized pages, 0 when none are recognized.
func (d *Document) RecomputeConfidence() {
	var sum float64
	var n int
	for _, p := range d.Pages {
		if p.Status == PageRecognized {
			sum += p.Confidence
			n++
		}
	}
	if n == 0 {
		d.Confidence = 0
		return
	}
	d.Confidence = sum / float64(n)
}
