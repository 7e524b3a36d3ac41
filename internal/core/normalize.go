package core

import (
	"strings"

	"github.com/JonMunkholm/tradecsv/internal/extract"
)

// headerMarkers identify a header row by its first cell, upper-cased.
var headerMarkers = []string{"ORDER", "TRADE", "SECURITY", "BUY", "SELL"}

// minTableRows is the smallest table that can hold a header and one trade.
const minTableRows = 2

// Normalize maps raw tables onto trade records stamped with the source
// filename and its date token. Header rows, blank rows, and tables shorter
// than two rows are dropped. Cell values are carried through untrimmed.
func Normalize(tables []extract.Table, filename string) []TradeRecord {
	date := DateToken(filename)

	var records []TradeRecord
	for _, table := range tables {
		if len(table.Rows) < minTableRows {
			continue
		}
		for _, row := range table.Rows {
			if isHeaderRow(row) {
				continue
			}

			rec := TradeRecord{SourceFile: filename, Date: date}
			blank := true
			for i, f := range rec.schemaFields() {
				*f = cellAt(row, i)
				if strings.TrimSpace(*f) != "" {
					blank = false
				}
			}
			if blank {
				continue
			}
			records = append(records, rec)
		}
	}
	return records
}

// isHeaderRow reports whether the first cell carries a header marker.
// An empty row is not a header.
func isHeaderRow(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToUpper(row[0])
	for _, m := range headerMarkers {
		if strings.Contains(first, m) {
			return true
		}
	}
	return false
}

// cellAt returns row[i], or "" when the row is too short.
func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// DateToken returns filename up to its first run of whitespace, skipping
// leading whitespace. A name without whitespace is returned whole.
func DateToken(filename string) string {
	fields := strings.Fields(filename)
	if len(fields) == 0 {
		return filename
	}
	return fields[0]
}
