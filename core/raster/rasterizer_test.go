package raster

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixturePDF builds a small valid PDF with the given number of pages.
func fixturePDF(t *testing.T, pages int) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.Cell(40, 10, "page content")
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

// fixturePNG writes a small PNG and returns its path.
func fixturePNG(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 6))
	path := filepath.Join(t.TempDir(), "page.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// fakePdftoppm stands in for poppler: it copies the fixture image to the
// output prefix the way pdftoppm names single-page renders.
func fakePdftoppm(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script tool stand-in requires a unix shell")
	}
	path := filepath.Join(t.TempDir(), "pdftoppm")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestOpenRejectsNonPDF(t *testing.T) {
	r := New("pdftoppm", nil)
	_, err := r.Open(context.Background(), []byte("<html>not a pdf</html>"), 150, t.TempDir())
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestOpenRejectsCorruptPDF(t *testing.T) {
	r := New("pdftoppm", nil)
	_, err := r.Open(context.Background(), []byte("%PDF-1.7 truncated garbage"), 150, t.TempDir())
	assert.ErrorIs(t, err, core.ErrCorruptDocument)
}

func TestOpenPageCountIsDeterministic(t *testing.T) {
	doc := fixturePDF(t, 3)
	r := New("pdftoppm", nil)

	seq1, err := r.Open(context.Background(), doc, 150, t.TempDir())
	require.NoError(t, err)
	seq2, err := r.Open(context.Background(), doc, 150, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 3, seq1.Count())
	assert.Equal(t, seq1.Count(), seq2.Count(), "same bytes must yield the same page count")
}

func TestNextProducesOrderedPages(t *testing.T) {
	pngPath := fixturePNG(t)
	bin := fakePdftoppm(t, `for a in "$@"; do prefix=$a; done
cp `+pngPath+` "$prefix-01.png"`)

	seq, err := New(bin, nil).Open(context.Background(), fixturePDF(t, 3), 150, t.TempDir())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		img, err := seq.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, i, img.Index)
		assert.Equal(t, 4, img.Width)
		assert.Equal(t, 6, img.Height)
		assert.Equal(t, 150, img.DPI)
		assert.FileExists(t, img.Path)
	}
	_, err = seq.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestNextSurfacesToolFailure(t *testing.T) {
	bin := fakePdftoppm(t, `echo "Syntax Error: bad xref" >&2; exit 1`)

	seq, err := New(bin, nil).Open(context.Background(), fixturePDF(t, 2), 150, t.TempDir())
	require.NoError(t, err)

	_, err = seq.Next(context.Background())
	assert.ErrorIs(t, err, core.ErrCorruptDocument)
}

func TestNextHonorsCancellation(t *testing.T) {
	bin := fakePdftoppm(t, `sleep 30`)

	seq, err := New(bin, nil).Open(context.Background(), fixturePDF(t, 1), 150, t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = seq.Next(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
