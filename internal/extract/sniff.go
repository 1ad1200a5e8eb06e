package extract

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// sniffExtension guesses an extension for content that arrived without a name.
// Anything textual other than HTML is treated as .txt.
func sniffExtension(content []byte) string {
	m := mimetype.Detect(content)
	switch ext := m.Extension(); ext {
	case ".pdf", ".docx", ".odt", ".rtf", ".xlsx", ".html", ".png", ".jpg", ".jpeg", ".tif", ".tiff":
		return ext
	}
	if strings.HasPrefix(m.String(), "text/") {
		return ".txt"
	}
	return m.Extension()
}
