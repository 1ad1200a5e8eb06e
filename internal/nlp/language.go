package nlp

import (
	"github.com/pemistahl/lingua-go"
)

// minLanguageSample is the shortest text worth running detection on.
const minLanguageSample = 20

// LinguaDetector detects English among a fixed set of common languages.
type LinguaDetector struct {
	detector lingua.LanguageDetector
}

// NewLinguaDetector builds a detector over English and the major European languages.
// Building loads language models into memory; build it once and share it.
func NewLinguaDetector() *LinguaDetector {
	d := lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.French,
			lingua.German,
			lingua.Spanish,
			lingua.Italian,
			lingua.Portuguese,
			lingua.Dutch,
		).
		WithMinimumRelativeDistance(0.1).
		Build()
	return &LinguaDetector{detector: d}
}

// IsEnglish implements LanguageDetector.
func (l *LinguaDetector) IsEnglish(text string) (bool, bool) {
	if len(text) < minLanguageSample {
		return false, false
	}
	lang, ok := l.detector.DetectLanguageOf(text)
	if !ok {
		return false, false
	}
	return lang == lingua.English, true
}
