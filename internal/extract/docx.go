package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

const (
	docxDefaultBody     = "word/document.xml"
	contentTypesPath    = "[Content_Types].xml"
	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
)

var (
	// <w:t> runs, with or without attributes such as xml:space.
	wtTag = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	// paragraph boundaries, closing tag or self-closed empty paragraph
	wpEnd = regexp.MustCompile(`</w:p>|<w:p(?:\s[^>]*)?/>`)

	mainPartAfter  = regexp.MustCompile(`<Override[^>]+PartName="([^"]+)"[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"`)
	mainPartBefore = regexp.MustCompile(`<Override[^>]+ContentType="` + regexp.QuoteMeta(docxMainContentType) + `"[^>]+PartName="([^"]+)"`)

	xmlEntities = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'")
)

func readZipEntry(zr *zip.Reader, name string) ([]byte, bool, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, true, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			return nil, true, fmt.Errorf("read %s: %w", name, err)
		}
		return buf.Bytes(), true, nil
	}
	return nil, false, nil
}

// docxBodyPath resolves the main document part from [Content_Types].xml.
func docxBodyPath(zr *zip.Reader) string {
	types, ok, err := readZipEntry(zr, contentTypesPath)
	if !ok || err != nil {
		return docxDefaultBody
	}
	for _, re := range []*regexp.Regexp{mainPartAfter, mainPartBefore} {
		if m := re.FindSubmatch(types); len(m) > 1 {
			return strings.TrimPrefix(string(m[1]), "/")
		}
	}
	return docxDefaultBody
}

// extractDOCX returns the text of every paragraph on its own line, so that
// line-oriented heuristics (titles, bylines) still see the layout.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract DOCX: not a zip: %w", err)
	}
	bodyPath := docxBodyPath(zr)
	body, ok, err := readZipEntry(zr, bodyPath)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("extract DOCX: %s not found", bodyPath)
	}

	var lines []string
	for _, para := range wpEnd.Split(string(body), -1) {
		runs := wtTag.FindAllStringSubmatch(para, -1)
		if len(runs) == 0 {
			continue
		}
		var b strings.Builder
		for _, r := range runs {
			b.WriteString(r[1])
		}
		if line := strings.TrimSpace(xmlEntities.Replace(b.String())); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
