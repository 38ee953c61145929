package ocr

import (
	"testing"

	"github.com/Johnny-Taake/docpipe/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLanguages(t *testing.T) {
	tests := []struct {
		name   string
		in     []string
		expect []string
	}{
		{"tesseract codes pass through", []string{"eng", "rus"}, []string{"eng", "rus"}},
		{"iso aliases resolve", []string{"en", "ru"}, []string{"eng", "rus"}},
		{"mixed, order preserved", []string{"rus", "en", "deu"}, []string{"rus", "eng", "deu"}},
		{"chinese alias", []string{"zh"}, []string{"chi_sim"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeLanguages(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expect, got)
		})
	}
}

func TestNormalizeLanguagesRejectsUnknown(t *testing.T) {
	// One unknown code fails the whole list: the codes are a single
	// combined pass, not sequential fallbacks.
	_, err := NormalizeLanguages([]string{"eng", "klingon"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnsupportedLanguage)
	assert.Contains(t, err.Error(), "klingon")

	_, err = NormalizeLanguages(nil)
	assert.ErrorIs(t, err, core.ErrUnsupportedLanguage)
}

func TestPresetsUseSingleLineSegmentation(t *testing.T) {
	for name, preset := range map[string]map[string]string{
		"numeric":  NumericPreset(),
		"hashrate": HashratePreset(),
	} {
		assert.Equal(t, "7", preset["tessedit_pageseg_mode"], name)
		assert.NotEmpty(t, preset["tessedit_char_whitelist"], name)
	}
	assert.Contains(t, HashratePreset()["tessedit_char_whitelist"], "T")
	assert.Contains(t, NumericPreset()["tessedit_char_whitelist"], ",")
}
