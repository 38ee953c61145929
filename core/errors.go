package core

import (
	"errors"
	"fmt"
)

var (
	// ErrResourceTimeout is returned when a display lease cannot be
	// acquired before the context deadline.
	ErrResourceTimeout = errors.New("docpipe: display lease acquisition timed out")

	// ErrRenderTimeout is returned when the browser exceeds its deadline.
	ErrRenderTimeout = errors.New("docpipe: browser render timed out")

	// ErrBrowserCrashed is returned when the browser process dies abnormally.
	ErrBrowserCrashed = errors.New("docpipe: browser process crashed")

	// ErrNavigationError is returned when the browser fails to load the reference.
	ErrNavigationError = errors.New("docpipe: navigation failed")

	// ErrUnsupportedFormat is returned for input bytes that are not a
	// paginated document format the rasterizer understands.
	ErrUnsupportedFormat = errors.New("docpipe: unsupported document format")

	// ErrCorruptDocument is returned when the document fails structural validation.
	ErrCorruptDocument = errors.New("docpipe: corrupt document")

	// ErrEngineError is returned on OCR engine-level failure. A low-confidence
	// result is not an error.
	ErrEngineError = errors.New("docpipe: ocr engine failure")

	// ErrUnsupportedLanguage is returned for language codes the engine
	// has no trained model for.
	ErrUnsupportedLanguage = errors.New("docpipe: unsupported ocr language")

	// ErrExternalToolError is returned when the structured extraction tool
	// exits non-zero or emits unparseable output.
	ErrExternalToolError = errors.New("docpipe: structured extraction tool failed")

	// ErrExternalToolTimeout is returned when the structured extraction tool
	// exceeds its wall-clock budget and is killed.
	ErrExternalToolTimeout = errors.New("docpipe: structured extraction tool timed out")
)

// StageError attaches pipeline context (stage name, page index) to an
// underlying error kind. It unwraps to the sentinel, so callers match
// with errors.Is.
type StageError struct {
	Stage string
	Page  int // -1 when not page-scoped
	Err   error
}

func (e *StageError) Error() string {
	if e.Page >= 0 {
		return fmt.Sprintf("%s (page %d): %v", e.Stage, e.Page, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err with stage context. Page -1 means document-scoped.
func NewStageError(stage string, page int, err error) *StageError {
	return &StageError{Stage: stage, Page: page, Err: err}
}
