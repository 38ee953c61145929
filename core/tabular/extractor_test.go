package tabular

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJava writes an executable shell script standing in for `java -jar`.
func fakeJava(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell-script tool stand-in requires a unix shell")
	}
	path := filepath.Join(t.TempDir(), "java")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

const streamJSON = `[
  {"data": [
    [{"text": "Model"}, {"text": "Hashrate"}, {"text": "Price"}],
    [{"text": " "}, {"text": ""}, {"text": ""}],
    [{"text": "S21"}, {"text": "200 TH/s"}, {"text": "6399"}]
  ]},
  {"data": [[{"text": ""}, {"text": " "}]]}
]`

func TestExtractParsesStreamOutput(t *testing.T) {
	java := fakeJava(t, `case "$*" in *--stream*) cat <<'EOF'
`+streamJSON+`
EOF
;; *) echo '[]';; esac`)

	records, err := New(java, "tabula.jar", time.Minute, nil).
		Extract(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)

	// The all-empty row and the all-empty table are dropped.
	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].TableIndex)
	assert.Equal(t, "tabula (stream)", records[0].Provenance)
	assert.Equal(t, [][]string{
		{"Model", "Hashrate", "Price"},
		{"S21", "200 TH/s", "6399"},
	}, records[0].Rows)
}

func TestExtractFallsBackToLattice(t *testing.T) {
	java := fakeJava(t, `case "$*" in
*--stream*) echo '[]';;
*--lattice*) echo '[{"data":[[{"text":"Model"},{"text":"Price"}]]}]';;
esac`)

	records, err := New(java, "tabula.jar", time.Minute, nil).
		Extract(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "tabula (lattice)", records[0].Provenance)
}

func TestExtractNoTablesIsNotAnError(t *testing.T) {
	java := fakeJava(t, `echo '[]'`)

	records, err := New(java, "tabula.jar", time.Minute, nil).
		Extract(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestExtractNonZeroExit(t *testing.T) {
	java := fakeJava(t, `echo "java.io.IOException: encrypted document" >&2; exit 2`)

	_, err := New(java, "tabula.jar", time.Minute, nil).
		Extract(context.Background(), []byte("%PDF-1.4"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExternalToolError)
	assert.Contains(t, err.Error(), "exit code 2")
	assert.Contains(t, err.Error(), "encrypted")
}

func TestExtractTimeoutKillsTool(t *testing.T) {
	java := fakeJava(t, `sleep 30`)

	start := time.Now()
	_, err := New(java, "tabula.jar", 150*time.Millisecond, nil).
		Extract(context.Background(), []byte("%PDF-1.4"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExternalToolTimeout)
	assert.Less(t, time.Since(start), 10*time.Second, "hung tool must be killed, not waited out")
}

func TestExtractUnparseableOutput(t *testing.T) {
	java := fakeJava(t, `echo 'WARNING: something on stdout'`)

	_, err := New(java, "tabula.jar", time.Minute, nil).
		Extract(context.Background(), []byte("%PDF-1.4"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrExternalToolError)
	assert.Contains(t, err.Error(), "unparseable")
}
