// Package pipeline implements the orchestrator that sequences the
// extraction stages per document:
//
//	resolve source -> rasterize -> (page OCR, structured extraction in parallel) -> merge
//
// The orchestrator owns all retry and degradation policy. Page OCR runs on
// a bounded worker pool and every page is an independent failure domain;
// structured extraction is best-effort and never fails the document. The
// caller always receives a Document result whose status communicates
// success, partial success, or failure.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"sort"
	"time"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/Johnny-Taake/docpipe/core/config"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Stages bundles the pipeline's collaborators. Everything is an interface
// from core, so tests can substitute fakes per stage.
type Stages struct {
	Fetcher    core.Fetcher
	Arbiter    core.DisplayArbiter
	Renderer   core.Renderer
	Rasterizer core.Rasterizer
	Recognizer core.Recognizer
	Tables     core.TableExtractor
}

// Pipeline coordinates document extraction. One coordination flow runs per
// document; concurrent documents are capped by a global semaphore to bound
// memory from in-flight page images.
type Pipeline struct {
	cfg    config.Config
	stages Stages
	docSem *semaphore.Weighted
	logger *logrus.Logger
}

// New creates a Pipeline with the given configuration and stages.
func New(cfg config.Config, stages Stages, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Pipeline{
		cfg:    cfg,
		stages: stages,
		docSem: semaphore.NewWeighted(int64(cfg.MaxDocuments)),
		logger: logger,
	}
}

// Process runs one document through the pipeline. It always returns a
// Document; the error mirrors the terminal failure (nil for success and
// partial success) so callers can branch without inspecting the status.
func (p *Pipeline) Process(ctx context.Context, source string) (*core.Document, error) {
	doc := &core.Document{
		ID:        uuid.NewString(),
		Source:    source,
		Status:    core.StatusPending,
		StartedAt: time.Now().UTC(),
	}
	log := p.logger.WithField("document", doc.ID)

	if err := p.docSem.Acquire(ctx, 1); err != nil {
		return p.fail(doc, core.NewStageError("admission", -1, err)), err
	}
	defer p.docSem.Release(1)

	// Scoped temp dir per document: every intermediate artifact lives here
	// and is removed on completion, failure, and cancellation alike.
	workDir, err := os.MkdirTemp("", "docpipe-doc-*")
	if err != nil {
		return p.fail(doc, core.NewStageError("workspace", -1, err)), err
	}
	defer os.RemoveAll(workDir)

	documentBytes, err := p.resolveSource(ctx, doc)
	if err != nil {
		return p.fail(doc, err), err
	}

	doc.Status = core.StatusRasterizing
	seq, err := p.stages.Rasterizer.Open(ctx, documentBytes, p.cfg.DPI, workDir)
	if err != nil {
		// Terminal per contract: a document that cannot be rasterized
		// produces no partial pages.
		return p.fail(doc, core.NewStageError("rasterize", -1, err)), err
	}

	count := seq.Count()
	doc.Pages = make([]core.Page, count)
	for i := range doc.Pages {
		doc.Pages[i] = core.Page{
			DocumentID: doc.ID,
			Index:      i,
			Status:     core.PageUnprocessed,
			Languages:  p.cfg.Languages,
		}
	}
	doc.Status = core.StatusRunning
	log.WithField("pages", count).Info("document running")

	// Structured extraction runs concurrently with OCR in its own failure
	// domain. Its error degrades completeness metadata only.
	tablesDone := make(chan struct{})
	var tableRecords []core.StructuredRecord
	var tableErr error
	if p.cfg.ExtractTables && p.stages.Tables != nil {
		go func() {
			defer close(tablesDone)
			tableRecords, tableErr = p.stages.Tables.Extract(ctx, documentBytes)
		}()
	} else {
		close(tablesDone)
	}

	p.runOCR(ctx, doc, seq, log)
	<-tablesDone

	// Merge. Workers write by index, but the ordering guarantee is made
	// explicit here: results are re-sorted, never assumed in-order.
	sort.Slice(doc.Pages, func(i, j int) bool { return doc.Pages[i].Index < doc.Pages[j].Index })
	if tableErr != nil {
		doc.Annotate("tables", tableErr.Error())
		log.WithError(tableErr).Warn("structured extraction degraded")
	} else {
		for i := range tableRecords {
			tableRecords[i].DocumentID = doc.ID
		}
		doc.Tables = tableRecords
	}

	doc.RecomputeStatus()
	doc.RecomputeConfidence()
	doc.FinishedAt = time.Now().UTC()
	log.WithFields(logrus.Fields{
		"status":     doc.Status,
		"confidence": fmt.Sprintf("%.2f", doc.Confidence),
		"tables":     len(doc.Tables),
	}).Info("document merged")
	return doc, nil
}

// runOCR consumes the page sequence and dispatches each image to the
// bounded worker pool. A single page's failure never aborts its siblings.
func (p *Pipeline) runOCR(ctx context.Context, doc *core.Document, seq core.PageSequence, log *logrus.Entry) {
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.cfg.MaxParallelPages)

	var streamErr error
	for {
		img, err := seq.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Mid-stream rasterization failure: the remaining pages can
			// never be produced. Dispatched pages finish normally; the
			// failure is recorded only after Wait, when no worker still
			// writes page state.
			streamErr = err
			break
		}
		group.Go(func() error {
			p.processPage(gctx, doc, img)
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes completion.
	_ = group.Wait()

	if streamErr != nil {
		p.failRemaining(doc, streamErr)
	}
	// Cancellation can leave pages untouched. They are failures, not
	// silently missing entries: index contiguity is an invariant.
	if ctx.Err() != nil {
		p.failRemaining(doc, ctx.Err())
	}
}

// processPage runs OCR for one page, retrying once with a degraded
// language set before marking the page failed. Exclusive ownership of
// doc.Pages[img.Index] belongs to this worker until it returns.
func (p *Pipeline) processPage(ctx context.Context, doc *core.Document, img *core.PageImage) {
	page := &doc.Pages[img.Index]
	page.ImagePath = img.Path

	languages := p.cfg.Languages
	res, err := p.recognizeOnce(ctx, img.Path, languages)
	if err != nil && retryable(ctx, err) {
		// Degraded retry: a combined multi-language pass can trip over
		// mixed scripts; the primary language alone is the fallback.
		degraded := languages[:1]
		page.Retries++
		page.Languages = degraded
		res, err = p.recognizeOnce(ctx, img.Path, degraded)
	}
	if err != nil {
		page.Status = core.PageFailed
		page.Error = core.NewStageError("ocr", img.Index, err).Error()
		p.logger.WithField("document", doc.ID).WithField("page", img.Index).
			WithError(err).Warn("page recognition failed")
		return
	}

	page.Status = core.PageRecognized
	page.Text = res.Text
	page.Tokens = res.Tokens
	page.Confidence = res.Confidence
	page.LowConfidence = res.Confidence < p.cfg.LowConfidence
}

func (p *Pipeline) recognizeOnce(ctx context.Context, imagePath string, languages []string) (*core.RecognizedText, error) {
	if sec := p.cfg.Timeouts.OCRSec; sec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(sec)*time.Second)
		defer cancel()
	}
	return p.stages.Recognizer.Recognize(ctx, imagePath, languages)
}

// retryable reports whether a failed OCR attempt deserves the one retry.
// Unsupported languages fail deterministically and cancellation must not
// spawn further work.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, core.ErrUnsupportedLanguage)
}

// failRemaining marks every still-unprocessed page as failed with err.
func (p *Pipeline) failRemaining(doc *core.Document, err error) {
	for i := range doc.Pages {
		if doc.Pages[i].Status == core.PageUnprocessed {
			doc.Pages[i].Status = core.PageFailed
			doc.Pages[i].Error = err.Error()
		}
	}
}

// resolveSource turns the document reference into raw document bytes.
// Local paths are read directly. Remote references are first fetched over
// plain HTTP; when that does not yield a PDF, the reference is rendered by
// the browser under a display lease.
func (p *Pipeline) resolveSource(ctx context.Context, doc *core.Document) ([]byte, error) {
	if !isRemote(doc.Source) {
		data, err := os.ReadFile(doc.Source)
		if err != nil {
			return nil, core.NewStageError("read", -1, err)
		}
		return data, nil
	}

	fetchCtx := ctx
	if sec := p.cfg.Timeouts.FetchSec; sec > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, time.Duration(sec)*time.Second)
		defer cancel()
	}
	if res, err := p.stages.Fetcher.Fetch(fetchCtx, doc.Source); err == nil && res.IsPDF() {
		return res.Body, nil
	}

	// Not a plain PDF link: render the page. The lease is held for the
	// whole browser session and released on every path out of here. The
	// arbiter bounds its own queue wait; ctx passed here is holder
	// liveness, so a long render never has its lease reclaimed under it.
	lease, err := p.stages.Arbiter.Acquire(ctx)
	if err != nil {
		return nil, core.NewStageError("display", -1, err)
	}
	defer lease.Release()

	artifact, err := p.stages.Renderer.Fetch(ctx, doc.Source, lease)
	if err != nil {
		return nil, core.NewStageError("render", -1, err)
	}
	doc.Title = artifact.Title
	doc.RenderedText = artifact.Markdown
	return artifact.Data, nil
}

// fail finalizes a document as terminally failed with no partial pages.
func (p *Pipeline) fail(doc *core.Document, err error) *core.Document {
	doc.Status = core.StatusFailed
	doc.Annotate("error", err.Error())
	doc.FinishedAt = time.Now().UTC()
	p.logger.WithField("document", doc.ID).WithError(err).Error("document failed")
	return doc
}

func isRemote(source string) bool {
	u, err := url.Parse(source)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
