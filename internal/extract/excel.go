package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractExcel renders a workbook as text: one tab-separated line per non-blank
// row. Workbooks with several sheets get a heading line per sheet so the title
// rules see sheet names rather than the first data cell.
func extractExcel(content []byte) (string, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open workbook: %w", err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	var lines []string
	for _, sheet := range sheets {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(sheets) > 1 && len(rows) > 0 {
			lines = append(lines, sheet)
		}
		for _, row := range rows {
			if line := strings.TrimRight(strings.Join(row, "\t"), "\t "); strings.TrimSpace(line) != "" {
				lines = append(lines, line)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
