// Package config holds the ingestion options for the extraction pipeline.
// Values come from defaults, an optional YAML file, and DOCPIPE_* environment
// variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Timeouts are the per-stage wall-clock budgets, in seconds. Every external
// process call carries its own deadline so a hung tool never pins a worker.
type Timeouts struct {
	FetchSec   int `yaml:"fetch"`
	RenderSec  int `yaml:"render"`
	OCRSec     int `yaml:"ocr"`
	TablesSec  int `yaml:"tables"`
	DisplaySec int `yaml:"display"`
}

// Config holds all recognized pipeline options.
type Config struct {
	// Languages is the ordered list of OCR language codes, tried as a
	// single combined model pass. ISO-639-1 codes are accepted and
	// normalized to Tesseract codes.
	Languages []string `yaml:"languages"`

	// DPI is the rasterization resolution.
	DPI int `yaml:"dpi"`

	// MaxParallelPages bounds the OCR worker pool per document.
	MaxParallelPages int `yaml:"max_parallel_pages"`

	// MaxDocuments caps documents processed concurrently, bounding memory
	// from in-flight page images.
	MaxDocuments int `yaml:"max_documents"`

	// ExtractTables enables the structured (tabula) extraction path.
	ExtractTables bool `yaml:"extract_tables"`

	// LowConfidence is the mean-confidence threshold below which a page
	// is flagged (never failed).
	LowConfidence float64 `yaml:"low_confidence"`

	Timeouts Timeouts `yaml:"timeouts"`

	// External tool locations.
	ChromiumPath string `yaml:"chromium_path"`
	PdftoppmPath string `yaml:"pdftoppm_path"`
	JavaPath     string `yaml:"java_path"`
	TabulaJar    string `yaml:"tabula_jar"`

	// DisplayLock is an optional lock-file path making the display lease
	// exclusive across processes sharing one virtual display.
	DisplayLock string `yaml:"display_lock"`

	// OutputDir is where result files are written.
	OutputDir string `yaml:"output_dir"`
}

// Default returns a Config with sensible defaults for a containerized
// deployment: English+Russian recognition at 150 dpi, one OCR worker per CPU.
func Default() Config {
	return Config{
		Languages:        []string{"eng", "rus"},
		DPI:              150,
		MaxParallelPages: runtime.NumCPU(),
		MaxDocuments:     2,
		ExtractTables:    true,
		LowConfidence:    0.60,
		Timeouts: Timeouts{
			FetchSec:   30,
			RenderSec:  60,
			OCRSec:     120,
			TablesSec:  90,
			DisplaySec: 60,
		},
		ChromiumPath: "chromium",
		PdftoppmPath: "pdftoppm",
		JavaPath:     "java",
		TabulaJar:    "/opt/tabula/tabula.jar",
	}
}

// Load builds a Config from defaults, then the YAML file at path (if path is
// non-empty), then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides fields from DOCPIPE_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("DOCPIPE_LANGUAGES"); v != "" {
		c.Languages = splitList(v)
	}
	if v, ok := envInt("DOCPIPE_DPI"); ok {
		c.DPI = v
	}
	if v, ok := envInt("DOCPIPE_MAX_PARALLEL_PAGES"); ok {
		c.MaxParallelPages = v
	}
	if v, ok := envInt("DOCPIPE_MAX_DOCUMENTS"); ok {
		c.MaxDocuments = v
	}
	if v := os.Getenv("DOCPIPE_EXTRACT_TABLES"); v != "" {
		c.ExtractTables = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("DOCPIPE_CHROMIUM"); v != "" {
		c.ChromiumPath = v
	}
	if v := os.Getenv("DOCPIPE_PDFTOPPM"); v != "" {
		c.PdftoppmPath = v
	}
	if v := os.Getenv("DOCPIPE_JAVA"); v != "" {
		c.JavaPath = v
	}
	if v := os.Getenv("DOCPIPE_TABULA_JAR"); v != "" {
		c.TabulaJar = v
	}
	if v := os.Getenv("DOCPIPE_DISPLAY_LOCK"); v != "" {
		c.DisplayLock = v
	}
	if v := os.Getenv("DOCPIPE_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
}

// Validate checks ranges and required fields.
func (c *Config) Validate() error {
	if len(c.Languages) == 0 {
		return fmt.Errorf("config: at least one OCR language is required")
	}
	if c.DPI < 72 || c.DPI > 1200 {
		return fmt.Errorf("config: dpi %d out of range [72,1200]", c.DPI)
	}
	if c.MaxParallelPages < 1 {
		return fmt.Errorf("config: max_parallel_pages must be >= 1")
	}
	if c.MaxDocuments < 1 {
		return fmt.Errorf("config: max_documents must be >= 1")
	}
	if c.LowConfidence < 0 || c.LowConfidence > 1 {
		return fmt.Errorf("config: low_confidence %.2f out of range [0,1]", c.LowConfidence)
	}
	return nil
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
