// Package raster implements the Rasterizer interface.
// Structural validation and page counting go through pdfcpu; the actual
// pixel work is delegated to poppler's pdftoppm, one page per invocation,
// so the sequence stays lazy and a consumer that stops early never pays
// for the rest of the document.
package raster

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
)

const killGrace = 5 * time.Second

// PDFRasterizer rasterizes PDF documents via pdftoppm.
type PDFRasterizer struct {
	pdftoppm string
	logger   *logrus.Logger
}

// New creates a PDFRasterizer invoking the given pdftoppm binary.
func New(pdftoppm string, logger *logrus.Logger) *PDFRasterizer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PDFRasterizer{pdftoppm: pdftoppm, logger: logger}
}

// Open validates the document and returns its lazy page sequence.
// Identical bytes and dpi always yield the same page count and dimensions.
func (r *PDFRasterizer) Open(ctx context.Context, documentBytes []byte, dpi int, workDir string) (core.PageSequence, error) {
	if len(documentBytes) < 5 || string(documentBytes[:5]) != "%PDF-" {
		return nil, core.ErrUnsupportedFormat
	}

	src := filepath.Join(workDir, "source.pdf")
	if err := os.WriteFile(src, documentBytes, 0o644); err != nil {
		return nil, fmt.Errorf("writing source document: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.ValidateFile(src, conf); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCorruptDocument, err)
	}
	count, err := api.PageCountFile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCorruptDocument, err)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: document has no pages", core.ErrCorruptDocument)
	}

	r.logger.WithFields(logrus.Fields{"pages": count, "dpi": dpi}).Debug("document opened for rasterization")
	return &pageSequence{
		pdftoppm: r.pdftoppm,
		src:      src,
		dir:      workDir,
		dpi:      dpi,
		count:    count,
	}, nil
}

// pageSequence renders pages on demand. It is finite and non-restartable:
// each call to Next yields the next index exactly once.
type pageSequence struct {
	pdftoppm string
	src      string
	dir      string
	dpi      int
	count    int
	next     int
}

func (s *pageSequence) Count() int { return s.count }

// Next rasterizes the next page. Returns io.EOF after the last one.
func (s *pageSequence) Next(ctx context.Context) (*core.PageImage, error) {
	if s.next >= s.count {
		return nil, io.EOF
	}
	index := s.next
	s.next++

	pageNo := strconv.Itoa(index + 1) // pdftoppm pages are 1-based
	prefix := filepath.Join(s.dir, fmt.Sprintf("page-%04d", index))
	cmd := exec.CommandContext(ctx, s.pdftoppm,
		"-png",
		"-r", strconv.Itoa(s.dpi),
		"-f", pageNo,
		"-l", pageNo,
		s.src,
		prefix,
	)
	cmd.WaitDelay = killGrace
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: pdftoppm failed on page %d: %v", core.ErrCorruptDocument, index, err)
	}

	path, err := producedFile(prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", core.ErrCorruptDocument, index, err)
	}
	w, h, err := pngDimensions(path)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", core.ErrCorruptDocument, index, err)
	}

	return &core.PageImage{Index: index, Path: path, Width: w, Height: h, DPI: s.dpi}, nil
}

// producedFile locates the single image pdftoppm wrote for the prefix.
// The page-number padding in the suffix depends on the document size,
// so a glob is more robust than reconstructing the name.
func producedFile(prefix string) (string, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil || len(matches) == 0 {
		return "", errors.New("no page image produced")
	}
	sort.Strings(matches)
	return matches[0], nil
}

func pngDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
