package extract

import (
	"context"
	"fmt"
	"strings"
)

// imageTypes maps image extensions to the MIME type sent to OCR.
var imageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

func (e *Extractor) recognize(ctx context.Context, content []byte, mimeType string) (string, error) {
	if e.ocr == nil {
		return "", ErrNoText
	}
	text, err := e.ocr.RecognizeText(ctx, content, mimeType)
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
