package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

func (e *Extractor) extractPDF(ctx context.Context, content []byte) (string, error) {
	text, pages, err := readPDFText(content)
	if err != nil {
		if e.ocr == nil {
			return "", err
		}
		e.logger.Debug("pdf text layer unreadable, running OCR", zap.Error(err))
		ocrText, ocrErr := e.recognize(ctx, content, "application/pdf")
		if ocrErr != nil {
			return "", fmt.Errorf("%w (ocr fallback: %v)", err, ocrErr)
		}
		return ocrText, nil
	}
	q := measureQuality(text, pages)
	if !q.needsOCR() {
		return text, nil
	}
	if e.ocr == nil {
		if q.CharsPerPage > 0 {
			return text, nil
		}
		return "", ErrNoText
	}
	e.logger.Debug("pdf text layer unusable, running OCR",
		zap.Int("pages", q.PageCount),
		zap.Float64("chars_per_page", q.CharsPerPage),
		zap.Float64("printable_ratio", q.PrintableRatio))
	ocrText, err := e.recognize(ctx, content, "application/pdf")
	if err != nil {
		if errors.Is(err, ErrNoText) && q.CharsPerPage > 0 {
			return text, nil
		}
		return "", err
	}
	return ocrText, nil
}

func readPDFText(content []byte) (string, int, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", 0, fmt.Errorf("open PDF: %w", err)
	}
	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("extract page %d: %w", i, err)
		}
		buf.WriteString(text)
		if i < numPages {
			buf.WriteByte('\n')
		}
	}
	return buf.String(), numPages, nil
}
