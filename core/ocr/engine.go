// Package ocr implements the Recognizer interface using the gosseract
// client. Recognition is CPU-bound and stateless per call: every call gets
// its own client, so concurrent page dispatch needs no coordination here.
package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/otiai10/gosseract/v2"
	"github.com/sirupsen/logrus"
)

// TesseractEngine runs OCR passes through a Tesseract client.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	variables     map[string]string
	logger        *logrus.Logger
}

// Option configures a TesseractEngine.
type Option func(*TesseractEngine)

// WithVariables sets Tesseract variables (PSM, character whitelists) applied
// to every pass. See the presets in this package.
func WithVariables(vars map[string]string) Option {
	return func(e *TesseractEngine) { e.variables = vars }
}

// New creates a Tesseract-backed OCR engine.
func New(logger *logrus.Logger, opts ...Option) *TesseractEngine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	e := &TesseractEngine{clientFactory: gosseract.NewClient, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recognize performs one combined multi-language pass over a page image.
// A low-confidence result is returned, not failed; only engine-level
// problems surface as errors.
func (e *TesseractEngine) Recognize(ctx context.Context, imagePath string, languages []string) (*core.RecognizedText, error) {
	langs, err := NormalizeLanguages(languages)
	if err != nil {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("%w: set image: %v", core.ErrEngineError, err)
	}
	if err := c.SetLanguage(langs...); err != nil {
		return nil, fmt.Errorf("%w: set languages %v: %v", core.ErrEngineError, langs, err)
	}
	for k, v := range e.variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return nil, fmt.Errorf("%w: set variable %s: %v", core.ErrEngineError, k, err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrEngineError, err)
	}

	tokens, mean := extractTokens(c)
	return &core.RecognizedText{
		Text:       strings.TrimSpace(text),
		Tokens:     tokens,
		Confidence: mean,
	}, nil
}

// extractTokens pulls per-word confidences from the word bounding boxes.
// Confidences are normalized from Tesseract's 0–100 scale into [0,1].
func extractTokens(c *gosseract.Client) ([]core.Token, float64) {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return nil, 0
	}
	tokens := make([]core.Token, 0, len(boxes))
	var sum float64
	for _, b := range boxes {
		word := strings.TrimSpace(b.Word)
		if word == "" {
			continue
		}
		conf := clamp01(b.Confidence / 100.0)
		sum += conf
		tokens = append(tokens, core.Token{Text: word, Confidence: conf})
	}
	if len(tokens) == 0 {
		return nil, 0
	}
	return tokens, sum / float64(len(tokens))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
