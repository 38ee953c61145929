// Package render — JSON renderer.
// Serializes the canonical Document Result. The schema is stable: field
// names and types are fixed, new optional fields may be added, none removed.
package render

import (
	"encoding/json"
	"fmt"

	"github.com/Johnny-Taake/docpipe/core"
)

// JSONRenderer produces the canonical machine-readable result.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render marshals the document result.
func (r *JSONRenderer) Render(doc *core.Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}
