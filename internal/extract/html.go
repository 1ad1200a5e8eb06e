package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlBlocks are the elements whose text becomes one line each.
const htmlBlocks = "title,h1,h2,h3,h4,h5,h6,p,li,blockquote,pre,td,th,dt,dd,figcaption"

// extractHTML returns the visible text of an HTML page, one block element per
// line, with the document title first when present.
func extractHTML(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find("script,style,noscript,template").Remove()

	var lines []string
	doc.Find(htmlBlocks).Each(func(_ int, s *goquery.Selection) {
		// Containers of other blocks are covered by their children.
		if s.Find(htmlBlocks).Length() > 0 {
			return
		}
		if text := collapseSpace(s.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		if text := collapseSpace(doc.Find("body").Text()); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
