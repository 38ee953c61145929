package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecomputeStatus(t *testing.T) {
	tests := []struct {
		name   string
		pages  []PageStatus
		expect DocumentStatus
	}{
		{"all recognized", []PageStatus{PageRecognized, PageRecognized, PageRecognized}, StatusSuccess},
		{"mixed", []PageStatus{PageRecognized, PageFailed, PageRecognized}, StatusPartialSuccess},
		{"all failed", []PageStatus{PageFailed, PageFailed}, StatusFailed},
		{"no pages", nil, StatusFailed},
		{"single recognized", []PageStatus{PageRecognized}, StatusSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{}
			for i, s := range tt.pages {
				doc.Pages = append(doc.Pages, Page{Index: i, Status: s})
			}
			doc.RecomputeStatus()
			assert.Equal(t, tt.expect, doc.Status)
		})
	}
}

func TestRecomputeConfidence(t *testing.T) {
	doc := &Document{Pages: []Page{
		{Index: 0, Status: PageRecognized, Confidence: 0.9},
		{Index: 1, Status: PageFailed, Confidence: 0.1}, // failed pages don't count
		{Index: 2, Status: PageRecognized, Confidence: 0.7},
	}}
	doc.RecomputeConfidence()
	assert.InDelta(t, 0.8, doc.Confidence, 1e-9)

	empty := &Document{Pages: []Page{{Index: 0, Status: PageFailed}}}
	empty.RecomputeConfidence()
	assert.Zero(t, empty.Confidence)
}

func TestAnnotate(t *testing.T) {
	doc := &Document{}
	doc.Annotate("tables", "timed out")
	doc.Annotate("render", "crashed")
	require.Len(t, doc.Annotations, 2)
	assert.Equal(t, "timed out", doc.Annotations["tables"])
}

func TestStageErrorUnwrap(t *testing.T) {
	err := NewStageError("ocr", 2, ErrEngineError)
	assert.True(t, errors.Is(err, ErrEngineError))
	assert.Contains(t, err.Error(), "page 2")

	docScoped := NewStageError("rasterize", -1, ErrCorruptDocument)
	assert.True(t, errors.Is(docScoped, ErrCorruptDocument))
	assert.NotContains(t, docScoped.Error(), "page")
}

func TestFetchResultIsPDF(t *testing.T) {
	assert.True(t, (&FetchResult{ContentType: "application/pdf"}).IsPDF())
	assert.True(t, (&FetchResult{Body: []byte("%PDF-1.7 ...")}).IsPDF())
	assert.False(t, (&FetchResult{ContentType: "text/html", Body: []byte("<html>")}).IsPDF())
}
