// Package tabular implements the TableExtractor interface by shelling out
// to the tabula JAR. The JVM is expensive to start, so there is exactly one
// attempt per document, under a hard wall-clock budget with a forced kill:
// a hung JVM must never pin a worker slot.
package tabular

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/sirupsen/logrus"
)

const killGrace = 5 * time.Second

// TabulaExtractor extracts row/column structure with the tabula tool.
type TabulaExtractor struct {
	java    string
	jar     string
	timeout time.Duration
	logger  *logrus.Logger
}

// New creates a TabulaExtractor running `java -jar <jar>`.
func New(java, jar string, timeout time.Duration, logger *logrus.Logger) *TabulaExtractor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &TabulaExtractor{java: java, jar: jar, timeout: timeout, logger: logger}
}

// Extract runs tabula over the whole document. Stream mode is tried first,
// lattice second; the first mode that finds any table wins. Finding no
// tables at all is not an error.
func (t *TabulaExtractor) Extract(ctx context.Context, documentBytes []byte) ([]core.StructuredRecord, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	workDir, err := os.MkdirTemp("", "docpipe-tabula-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrExternalToolError, err)
	}
	defer os.RemoveAll(workDir)

	src := filepath.Join(workDir, "document.pdf")
	if err := os.WriteFile(src, documentBytes, 0o644); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrExternalToolError, err)
	}

	for _, mode := range []string{"--stream", "--lattice"} {
		records, err := t.run(ctx, src, mode)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			t.logger.WithFields(logrus.Fields{"tables": len(records), "mode": mode}).
				Debug("structured extraction complete")
			return records, nil
		}
	}
	return nil, nil
}

// tabulaTable mirrors the tool's JSON output: one object per detected
// table, cells carrying their text.
type tabulaTable struct {
	Data [][]struct {
		Text string `json:"text"`
	} `json:"data"`
}

func (t *TabulaExtractor) run(ctx context.Context, src, mode string) ([]core.StructuredRecord, error) {
	cmd := exec.CommandContext(ctx, t.java,
		"-jar", t.jar,
		"--pages", "all",
		"--format", "JSON",
		"--guess",
		mode,
		src,
	)
	cmd.WaitDelay = killGrace

	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, core.ErrExternalToolTimeout
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail := strings.TrimSpace(string(exitErr.Stderr))
			if len(detail) > 200 {
				detail = detail[:200]
			}
			return nil, fmt.Errorf("%w: exit code %d: %s", core.ErrExternalToolError, exitErr.ExitCode(), detail)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrExternalToolError, err)
	}

	var tables []tabulaTable
	if err := json.Unmarshal(out, &tables); err != nil {
		return nil, fmt.Errorf("%w: unparseable output: %v", core.ErrExternalToolError, err)
	}

	provenance := "tabula (" + strings.TrimPrefix(mode, "--") + ")"
	records := make([]core.StructuredRecord, 0, len(tables))
	for _, table := range tables {
		rows := make([][]string, 0, len(table.Data))
		for _, row := range table.Data {
			cells := make([]string, len(row))
			empty := true
			for i, cell := range row {
				cells[i] = strings.TrimSpace(cell.Text)
				if cells[i] != "" {
					empty = false
				}
			}
			if !empty {
				rows = append(rows, cells)
			}
		}
		if len(rows) == 0 {
			continue
		}
		records = append(records, core.StructuredRecord{
			TableIndex: len(records),
			Rows:       rows,
			Provenance: provenance,
		})
	}
	return records, nil
}
