package extract

import (
	"strings"
	"unicode"
)

// textQuality summarizes how usable a recovered text layer is.
type textQuality struct {
	PageCount      int
	CharsPerPage   float64
	PrintableRatio float64
}

// needsOCR is true for (nearly) empty text layers and for layers full of
// unmapped glyphs.
func (q textQuality) needsOCR() bool {
	return q.CharsPerPage < 50 || q.PrintableRatio < 0.85
}

func measureQuality(text string, pages int) textQuality {
	if pages < 1 {
		pages = 1
	}
	trimmed := strings.TrimSpace(text)
	total, printable := 0, 0
	for _, r := range trimmed {
		total++
		if isGarbageRune(r) {
			continue
		}
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			printable++
		}
	}
	ratio := 1.0
	if total > 0 {
		ratio = float64(printable) / float64(total)
	}
	return textQuality{
		PageCount:      pages,
		CharsPerPage:   float64(total) / float64(pages),
		PrintableRatio: ratio,
	}
}

// isGarbageRune reports private-use code points, the replacement character and
// non-whitespace control characters.
func isGarbageRune(r rune) bool {
	switch {
	case r >= 0xE000 && r <= 0xF8FF:
		return true
	case r == unicode.ReplacementChar:
		return true
	case r < 0x20 && r != '\n' && r != '\r' && r != '\t':
		return true
	}
	return false
}
