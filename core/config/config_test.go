package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, []string{"eng", "rus"}, cfg.Languages)
	assert.Equal(t, 150, cfg.DPI)
	assert.GreaterOrEqual(t, cfg.MaxParallelPages, 1)
	assert.Equal(t, 2, cfg.MaxDocuments)
	assert.True(t, cfg.ExtractTables)
	assert.InDelta(t, 0.60, cfg.LowConfidence, 1e-9)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
languages: [eng]
dpi: 300
max_parallel_pages: 2
extract_tables: false
timeouts:
  ocr: 45
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"eng"}, cfg.Languages)
	assert.Equal(t, 300, cfg.DPI)
	assert.Equal(t, 2, cfg.MaxParallelPages)
	assert.False(t, cfg.ExtractTables)
	assert.Equal(t, 45, cfg.Timeouts.OCRSec)
	// Untouched keys keep their defaults.
	assert.Equal(t, 30, cfg.Timeouts.FetchSec)
	assert.Equal(t, "chromium", cfg.ChromiumPath)
}

func TestEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docpipe.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dpi: 300\nlanguages: [eng]\n"), 0o644))

	t.Setenv("DOCPIPE_DPI", "200")
	t.Setenv("DOCPIPE_LANGUAGES", "eng, rus ,deu")
	t.Setenv("DOCPIPE_EXTRACT_TABLES", "false")
	t.Setenv("DOCPIPE_TABULA_JAR", "/srv/tabula.jar")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.DPI)
	assert.Equal(t, []string{"eng", "rus", "deu"}, cfg.Languages)
	assert.False(t, cfg.ExtractTables)
	assert.Equal(t, "/srv/tabula.jar", cfg.TabulaJar)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults are valid", func(c *Config) {}, true},
		{"no languages", func(c *Config) { c.Languages = nil }, false},
		{"dpi too low", func(c *Config) { c.DPI = 50 }, false},
		{"dpi too high", func(c *Config) { c.DPI = 2400 }, false},
		{"zero workers", func(c *Config) { c.MaxParallelPages = 0 }, false},
		{"zero documents", func(c *Config) { c.MaxDocuments = 0 }, false},
		{"confidence above one", func(c *Config) { c.LowConfidence = 1.5 }, false},
		{"dpi boundary", func(c *Config) { c.DPI = 72 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
