// Package browser implements the Renderer interface on top of an external
// headless Chromium process. One browser session serves exactly one fetch:
// the profile is not reentrant-safe, so sessions are never shared across
// concurrent fetches. A crashed browser is restarted for exactly one retry
// before the failure surfaces.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/sirupsen/logrus"
)

// killGrace is how long a cancelled browser gets before SIGKILL.
const killGrace = 5 * time.Second

// ChromiumRenderer renders references with a headless Chromium binary.
type ChromiumRenderer struct {
	binary     string
	timeout    time.Duration
	screenshot bool // capture a PNG instead of a printed PDF
	logger     *logrus.Logger
}

// Option configures a ChromiumRenderer.
type Option func(*ChromiumRenderer)

// WithScreenshot switches the artifact from printed PDF to a PNG screenshot.
func WithScreenshot() Option {
	return func(r *ChromiumRenderer) { r.screenshot = true }
}

// New creates a ChromiumRenderer invoking the given binary.
func New(binary string, timeout time.Duration, logger *logrus.Logger, opts ...Option) *ChromiumRenderer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	r := &ChromiumRenderer{binary: binary, timeout: timeout, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch renders ref and returns the artifact. The caller must hold the
// display lease for the whole call; the renderer never proceeds without it.
func (r *ChromiumRenderer) Fetch(ctx context.Context, ref string, lease core.Lease) (*core.RenderedArtifact, error) {
	if lease == nil {
		return nil, fmt.Errorf("browser fetch requires a held display lease")
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	artifact, err := r.runSession(ctx, ref)
	if errors.Is(err, core.ErrBrowserCrashed) {
		// One restart per fetch: a fresh session replaces the dead process.
		r.logger.WithField("ref", ref).Warn("browser crashed, restarting for one retry")
		artifact, err = r.runSession(ctx, ref)
	}
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

// runSession launches one browser process in a scoped scratch directory,
// removed on every exit path.
func (r *ChromiumRenderer) runSession(ctx context.Context, ref string) (*core.RenderedArtifact, error) {
	session, err := os.MkdirTemp("", "docpipe-browser-*")
	if err != nil {
		return nil, fmt.Errorf("creating browser session dir: %w", err)
	}
	defer os.RemoveAll(session)

	outName := "page.pdf"
	outFlag := "--print-to-pdf="
	format := core.ArtifactPDF
	if r.screenshot {
		outName = "page.png"
		outFlag = "--screenshot="
		format = core.ArtifactPNG
	}
	outPath := filepath.Join(session, outName)

	args := []string{
		"--headless=new",
		"--no-sandbox",
		"--disable-gpu",
		"--disable-dev-shm-usage",
		"--hide-scrollbars",
		"--user-data-dir=" + filepath.Join(session, "profile"),
		"--virtual-time-budget=10000",
		outFlag + outPath,
		ref,
	}
	if err := r.run(ctx, args); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		// Chromium exited zero but produced nothing: treat as a failed
		// navigation rather than a crash.
		return nil, fmt.Errorf("%w: no artifact produced for %s", core.ErrNavigationError, ref)
	}

	artifact := &core.RenderedArtifact{Data: data, Format: format}
	r.addSidecar(ctx, ref, artifact)
	return artifact, nil
}

// addSidecar runs a second, cheap DOM dump pass and attaches the page title
// and a markdown rendition. Sidecar failures are non-fatal.
func (r *ChromiumRenderer) addSidecar(ctx context.Context, ref string, artifact *core.RenderedArtifact) {
	cmd := exec.CommandContext(ctx, r.binary,
		"--headless=new",
		"--no-sandbox",
		"--disable-gpu",
		"--disable-dev-shm-usage",
		"--dump-dom",
		ref,
	)
	cmd.WaitDelay = killGrace
	out, err := cmd.Output()
	if err != nil {
		r.logger.WithError(err).WithField("ref", ref).Debug("dom sidecar pass failed")
		return
	}
	artifact.Title, artifact.Markdown = parseDOM(string(out))
}

// run executes one browser invocation and classifies its failure mode.
func (r *ChromiumRenderer) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.WaitDelay = killGrace

	err := cmd.Run()
	if err == nil {
		return nil
	}
	// A context-killed process also dies by signal; classify the context
	// end first so a caller cancellation is never mistaken for a crash.
	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return core.ErrRenderTimeout
		}
		return ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.ExitCode() == -1 {
			// Terminated by signal: the browser process died under us.
			return core.ErrBrowserCrashed
		}
		return fmt.Errorf("%w: browser exited with code %d", core.ErrNavigationError, exitErr.ExitCode())
	}
	return fmt.Errorf("%w: %v", core.ErrNavigationError, err)
}
