package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

type fakeOCR struct {
	text     string
	err      error
	mimeType string
	calls    int
}

func (f *fakeOCR) RecognizeText(_ context.Context, _ []byte, mimeType string) (string, error) {
	f.calls++
	f.mimeType = mimeType
	return f.text, f.err
}

func TestExtractBytes_plain(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		ext     string
		want    string
	}{
		{"txt", []byte("Hello world\nLine 2"), ".txt", "Hello world\nLine 2"},
		{"utf8", []byte("caf\xc3\xa9"), ".md", "café"},
		{"invalid utf8", []byte("hello\x80world"), ".rst", "hello\uFFFDworld"},
		{"upper-case ext", []byte("shout"), ".TXT", "shout"},
		{"byte-order mark", []byte("\xef\xbb\xbfAnnual Report"), ".txt", "Annual Report"},
	}
	e := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractBytes(context.Background(), tt.content, tt.ext)
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBytes_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Title")
	f.SetCellValue("Sheet1", "A2", "Value 1")
	f.SetCellValue("Sheet1", "B2", "Value 2")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := NewExtractor().ExtractBytes(context.Background(), buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Title\nValue 1\tValue 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_excelSheets(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Budget")
	f.SetCellValue("Sheet1", "A3", "Total")
	f.SetCellValue("Sheet1", "B3", 42)
	if _, err := f.NewSheet("Notes"); err != nil {
		t.Fatal(err)
	}
	f.SetCellValue("Notes", "A1", "Reviewed in 2023")
	_, _ = f.NewSheet("Empty")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got, err := NewExtractor().ExtractBytes(context.Background(), buf.Bytes(), ".xlsx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	want := "Sheet1\nBudget\nTotal\t42\nNotes\nReviewed in 2023"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtract_plainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.txt")
	if err := os.WriteFile(path, []byte("File content"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := NewExtractor().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "File content" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_excelFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Quarterly figures")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	got, err := NewExtractor().Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "Quarterly figures" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_nonexistent(t *testing.T) {
	if _, err := NewExtractor().Extract(context.Background(), "/nonexistent/path/file.txt"); err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestExtractBytes_unsupportedExtension(t *testing.T) {
	_, err := NewExtractor().ExtractBytes(context.Background(), []byte("raw content"), ".xyz")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	if !strings.Contains(err.Error(), ".xyz") {
		t.Errorf("error should name the extension: %v", err)
	}
}

func TestExtractBytes_sniffsPlainText(t *testing.T) {
	got, err := NewExtractor().ExtractBytes(context.Background(), []byte("just some words\n"), "")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "just some words\n" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_html(t *testing.T) {
	tests := []struct {
		name string
		html string
		ext  string
		want string
	}{
		{
			name: "blocks become lines",
			html: `<html><head><title>Cloud Storage Notes</title><style>p{color:red}</style></head>
<body><h1>Scalable   Storage</h1><script>var x = 1;</script><p>First paragraph.</p><ul><li><p>Nested item</p></li></ul></body></html>`,
			ext:  ".html",
			want: "Cloud Storage Notes\nScalable Storage\nFirst paragraph.\nNested item",
		},
		{
			name: "bare body text",
			html: `<html><body><div>Only   a div</div></body></html>`,
			ext:  ".HTM",
			want: "Only a div",
		},
		{
			name: "sniffed",
			html: `<!DOCTYPE html><html><body><p>Sniffed page</p></body></html>`,
			ext:  "",
			want: "Sniffed page",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewExtractor().ExtractBytes(context.Background(), []byte(tt.html), tt.ext)
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func docxBody(paragraphs ...string) string {
	var b strings.Builder
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		b.WriteString(`<w:p w:rsidR="00A1"><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

// minimalDocx returns .docx bytes. A non-empty docPath adds a [Content_Types].xml
// override pointing at it.
func minimalDocx(docPath string, paragraphs ...string) []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	if docPath != "" {
		ct, _ := w.Create("[Content_Types].xml")
		_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override PartName="/` + docPath + `" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`))
	} else {
		docPath = "word/document.xml"
	}
	fw, _ := w.Create(docPath)
	_, _ = fw.Write([]byte(docxBody(paragraphs...)))
	_ = w.Close()
	return buf.Bytes()
}

func TestExtractBytes_docx(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{"single paragraph", minimalDocx("", "Quarterly report"), "Quarterly report"},
		{"paragraphs become lines", minimalDocx("", "Deep Learning for Crops", "Jane Smith - Agronomy Lab", "Abstract"),
			"Deep Learning for Crops\nJane Smith - Agronomy Lab\nAbstract"},
		{"entities", minimalDocx("", "R&amp;D &lt;draft&gt;"), "R&D <draft>"},
		{"custom part", minimalDocx("word/document2.xml", "Content from document2"), "Content from document2"},
	}
	e := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.ExtractBytes(context.Background(), tt.content, ".docx")
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractBytes_docxContentTypesReversedOrder(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	ct, _ := w.Create("[Content_Types].xml")
	_, _ = ct.Write([]byte(`<Types><Override ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml" PartName="/word/document3.xml"/></Types>`))
	fw, _ := w.Create("word/document3.xml")
	_, _ = fw.Write([]byte(docxBody("Reversed order test")))
	_ = w.Close()

	got, err := NewExtractor().ExtractBytes(context.Background(), buf.Bytes(), ".docx")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Reversed order test" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_docxErrors(t *testing.T) {
	e := NewExtractor()
	if _, err := e.ExtractBytes(context.Background(), []byte("not a zip"), ".docx"); err == nil {
		t.Error("expected error for non-zip docx")
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, _ = w.Create("other.xml")
	_ = w.Close()
	if _, err := e.ExtractBytes(context.Background(), buf.Bytes(), ".docx"); err == nil {
		t.Error("expected error when document body is missing")
	}
}

func TestExtractBytes_image(t *testing.T) {
	img := []byte("\x89PNG\r\n\x1a\n")

	if _, err := NewExtractor().ExtractBytes(context.Background(), img, ".png"); !errors.Is(err, ErrNoText) {
		t.Errorf("without OCR: err = %v, want ErrNoText", err)
	}

	ocr := &fakeOCR{text: "  Scanned invoice 2021  "}
	got, err := NewExtractor(WithOCR(ocr)).ExtractBytes(context.Background(), img, ".png")
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Scanned invoice 2021" || ocr.mimeType != "image/png" {
		t.Errorf("got %q via %q", got, ocr.mimeType)
	}

	blank := &fakeOCR{}
	if _, err := NewExtractor(WithOCR(blank)).ExtractBytes(context.Background(), img, ".jpg"); !errors.Is(err, ErrNoText) {
		t.Errorf("blank OCR: err = %v, want ErrNoText", err)
	}

	failing := &fakeOCR{err: errors.New("service down")}
	if _, err := NewExtractor(WithOCR(failing)).ExtractBytes(context.Background(), img, ".tiff"); err == nil || errors.Is(err, ErrNoText) {
		t.Errorf("failing OCR: err = %v", err)
	}
}

func TestExtractBytes_invalidPDF(t *testing.T) {
	if _, err := NewExtractor().ExtractBytes(context.Background(), []byte("not a pdf"), ".pdf"); err == nil {
		t.Fatal("expected error for invalid PDF without OCR")
	}

	ocr := &fakeOCR{text: "Scanned contract 2019"}
	got, err := NewExtractor(WithOCR(ocr)).ExtractBytes(context.Background(), []byte("not a pdf"), ".pdf")
	if err != nil {
		t.Fatalf("OCR fallback: %v", err)
	}
	if got != "Scanned contract 2019" || ocr.calls != 1 || ocr.mimeType != "application/pdf" {
		t.Errorf("got %q after %d OCR calls via %q", got, ocr.calls, ocr.mimeType)
	}

	failing := &fakeOCR{err: errors.New("service down")}
	_, err = NewExtractor(WithOCR(failing)).ExtractBytes(context.Background(), []byte("not a pdf"), ".pdf")
	if err == nil || !strings.Contains(err.Error(), "open PDF") {
		t.Errorf("failing OCR: err = %v, want the PDF parse error", err)
	}
}

func TestSupported(t *testing.T) {
	plain := NewExtractor()
	withOCR := NewExtractor(WithOCR(&fakeOCR{}))
	tests := []struct {
		ext           string
		plain, withOC bool
	}{
		{".pdf", true, true},
		{".DOCX", true, true},
		{".odt", true, true},
		{".htm", true, true},
		{".png", false, true},
		{".pptx", false, false},
	}
	for _, tt := range tests {
		if got := plain.Supported(tt.ext); got != tt.plain {
			t.Errorf("Supported(%q) = %v", tt.ext, got)
		}
		if got := withOCR.Supported(tt.ext); got != tt.withOC {
			t.Errorf("Supported(%q) with OCR = %v", tt.ext, got)
		}
	}
}

func TestMeasureQuality(t *testing.T) {
	good := strings.Repeat("A readable sentence of text. ", 10)
	tests := []struct {
		name  string
		text  string
		pages int
		ocr   bool
	}{
		{"empty", "", 3, true},
		{"sparse", "Page 1", 1, true},
		{"readable", good, 1, false},
		{"garbage glyphs", strings.Repeat("\uE001\uE002ab", 40), 1, true},
		{"zero pages treated as one", good, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := measureQuality(tt.text, tt.pages).needsOCR(); got != tt.ocr {
				t.Errorf("needsOCR = %v, want %v", got, tt.ocr)
			}
		})
	}
}
