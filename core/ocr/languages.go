// Language code handling and recognition presets.
package ocr

import (
	"fmt"

	"github.com/Johnny-Taake/docpipe/core"
)

// aliases maps ISO-639-1 codes to Tesseract model names.
var aliases = map[string]string{
	"en": "eng",
	"ru": "rus",
	"de": "deu",
	"fr": "fra",
	"es": "spa",
	"it": "ita",
	"pt": "por",
	"uk": "ukr",
	"zh": "chi_sim",
	"ja": "jpn",
}

// supported is the set of Tesseract models shipped in the container image.
var supported = map[string]bool{
	"eng": true, "rus": true, "deu": true, "fra": true, "spa": true,
	"ita": true, "por": true, "ukr": true, "chi_sim": true, "jpn": true,
	"osd": true,
}

// NormalizeLanguages resolves ISO-639-1 aliases and verifies every code has
// a trained model, preserving order. An unknown code fails the whole list:
// languages form a single combined pass, not fallbacks.
func NormalizeLanguages(languages []string) ([]string, error) {
	if len(languages) == 0 {
		return nil, fmt.Errorf("%w: empty language list", core.ErrUnsupportedLanguage)
	}
	out := make([]string, 0, len(languages))
	for _, lang := range languages {
		code := lang
		if mapped, ok := aliases[lang]; ok {
			code = mapped
		}
		if !supported[code] {
			return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedLanguage, lang)
		}
		out = append(out, code)
	}
	return out, nil
}

// Presets mirroring the price-list recognition profiles: single-line page
// segmentation with a character whitelist tuned per column type.

// NumericPreset restricts recognition to price-like content.
func NumericPreset() map[string]string {
	return map[string]string{
		"tessedit_pageseg_mode":   "7",
		"tessedit_char_whitelist": "0123456789,. ",
	}
}

// HashratePreset restricts recognition to hashrate units.
func HashratePreset() map[string]string {
	return map[string]string{
		"tessedit_pageseg_mode":   "7",
		"tessedit_char_whitelist": "0123456789TGtgMmHh/.,+ ",
	}
}
