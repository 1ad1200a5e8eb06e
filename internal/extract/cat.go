package extract

import (
	"fmt"
	"strings"

	"github.com/lu4p/cat"
)

// extractWithCat handles OpenDocument text and RTF.
func extractWithCat(content []byte, ext string) (string, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", strings.TrimPrefix(ext, "."), err)
	}
	return strings.TrimSpace(text), nil
}
