// Package tabular recognizes milestone schedules in spreadsheets without
// calling the language model. It is deliberately permissive, best-effort
// structural recognition: rows it cannot classify are skipped silently.
package tabular

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/infradyn/docextract/internal/common"
	"github.com/infradyn/docextract/internal/entity"
)

// headerScanRows is how deep into the sheet a header row is searched for.
const headerScanRows = 10

var headerTokens = []string{"milestone", "payment", "description"}

// ParseMilestones scans the active sheet for a milestone schedule. ok reports
// whether a header row was found within the scan window; when false the caller
// should delegate the sheet text to the language model instead.
//
// Cell classification is first-match-wins per row, in a fixed order: the first
// textual cell longer than 3 characters becomes the title, the first number in
// (0, 100] becomes the payment percentage, the first date becomes the expected
// date. That order dependency is part of the contract; rows with several
// candidate cells of the same shape resolve to the leftmost.
func ParseMilestones(content []byte, logger *slog.Logger) (milestones []entity.Milestone, ok bool, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, false, common.NewUnreadableDocument("Could not extract text from document", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, false, common.NewUnreadableDocument("Could not extract text from document", err)
	}

	headerIdx := findHeaderRow(rows)
	if headerIdx < 0 {
		logger.Info("tabular.milestones.no_header", "sheet", sheet, "rows_scanned", min(len(rows), headerScanRows))
		return nil, false, nil
	}

	milestones = []entity.Milestone{}
	for _, row := range rows[headerIdx+1:] {
		if m, found := classifyRow(row); found {
			milestones = append(milestones, m)
		}
	}

	logger.Info("tabular.milestones.parsed", "sheet", sheet, "header_row", headerIdx+1, "milestones", len(milestones))
	return milestones, true, nil
}

// findHeaderRow returns the index of the first row within the scan window
// containing any header token, or -1.
func findHeaderRow(rows [][]string) int {
	limit := min(len(rows), headerScanRows)
	for i := 0; i < limit; i++ {
		for _, cell := range rows[i] {
			lower := strings.ToLower(cell)
			for _, tok := range headerTokens {
				if strings.Contains(lower, tok) {
					return i
				}
			}
		}
	}
	return -1
}

// classifyRow extracts a milestone from one data row. A milestone is emitted
// only when both a title and a non-zero payment percentage were found.
func classifyRow(row []string) (entity.Milestone, bool) {
	var (
		title string
		pct   float64
		date  string
	)

	for _, cell := range row {
		val := strings.TrimSpace(cell)
		if val == "" {
			continue
		}

		if n, isNum := parseNumber(val); isNum {
			if pct == 0 && n > 0 && n <= 100 {
				pct = n
			}
			continue
		}
		if d, isDate := parseDate(val); isDate {
			if date == "" {
				date = d
			}
			continue
		}
		if title == "" && len(val) > 3 {
			title = val
		}
	}

	if title == "" || pct == 0 {
		return entity.Milestone{}, false
	}

	m := entity.Milestone{Title: title, PaymentPercentage: pct}
	if date != "" {
		m.ExpectedDate = &date
	}
	return m, true
}

func parseNumber(s string) (float64, bool) {
	s = strings.TrimSuffix(s, "%")
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return n, err == nil
}

// dateLayouts covers the formats excelize renders date cells in, plus common
// hand-typed shapes.
var dateLayouts = []string{
	"2006-01-02",
	"01-02-06",
	"1/2/06",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"02-Jan-06",
	"2-Jan-2006",
	"Jan 2, 2006",
}

// parseDate recognizes a date cell and renders it as YYYY-MM-DD.
func parseDate(s string) (string, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
