package textsource

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/constants"
)

// extractXLSX dumps every sheet as a "=== SHEET: <name> ===" header followed
// by one " | "-joined line per non-empty row.
func (e *Extractor) extractXLSX(path string) (Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Result{Method: "xlsx"}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("textsource.xlsx.close_failed", "path", path, "error", err)
		}
	}()

	text, sheets, warns := SheetText(f)
	return Result{Text: text, Pages: sheets, Method: "xlsx", Warnings: warns}, nil
}

// SheetText renders an open workbook in the spreadsheet dump format.
func SheetText(f *excelize.File) (string, int, []string) {
	var b strings.Builder
	var warns []string
	sheets := f.GetSheetList()
	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			warns = append(warns, fmt.Sprintf("sheet %q: %v", sheet, err))
			continue
		}
		b.WriteString(constants.SheetMarker + " " + sheet + " ===\n")
		for _, row := range rows {
			cells := make([]string, len(row))
			empty := true
			for i, c := range row {
				cells[i] = strings.Join(strings.Fields(c), " ")
				if cells[i] != "" {
					empty = false
				}
			}
			if empty {
				continue
			}
			b.WriteString(strings.Join(cells, " | "))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n"), len(sheets), warns
}
