package extract

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/infradyn/docextract/internal/common"
)

const cellDelimiter = " | "

// SpreadsheetText linearizes every sheet of a workbook: a header marker line
// per sheet, then one line per non-empty row with cells joined by a fixed
// delimiter. Formula cells read as their last-computed value.
func SpreadsheetText(content []byte) (Text, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return Text{}, common.NewUnreadableDocument("Could not extract text from document", err)
	}
	defer func() { _ = f.Close() }()

	var segments []string
	for _, sheet := range f.GetSheetList() {
		lines := []string{"=== Sheet: " + sheet + " ==="}

		rows, err := f.GetRows(sheet)
		if err != nil {
			return Text{}, common.NewUnreadableDocument("Could not extract text from document", err)
		}
		for _, row := range rows {
			if rowEmpty(row) {
				continue
			}
			lines = append(lines, strings.Join(row, cellDelimiter))
		}
		segments = append(segments, strings.Join(lines, "\n"))
	}

	return newText(segments, "\n"), nil
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
