package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/joacominatel/theseus/internal/database"
)

// Output formats understood by Render.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
)

// maxCellWidth caps table columns; longer cells are cut with an ellipsis.
const maxCellWidth = 40

// Render writes result to w in the given format.
func Render(w io.Writer, result *database.QueryResult, format string) error {
	switch format {
	case FormatTable, "":
		return renderTable(w, result)
	case FormatCSV:
		return renderCSV(w, result)
	case FormatJSON:
		return renderJSON(w, result)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderTable(w io.Writer, result *database.QueryResult) error {
	if len(result.Columns) == 0 {
		_, err := fmt.Fprintf(w, "OK, %d row(s) affected\n", result.RowCount)
		return err
	}

	widths := ColumnWidths(result, maxCellWidth)

	var b strings.Builder
	writeLine := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(Fit(cell, widths[i]))
		}
		b.WriteString("\n")
	}

	writeLine(result.Columns)
	for i, width := range widths {
		if i > 0 {
			b.WriteString("-+-")
		}
		b.WriteString(strings.Repeat("-", width))
	}
	b.WriteString("\n")
	for _, row := range result.Rows {
		writeLine(row)
	}
	fmt.Fprintf(&b, "(%d row(s))\n", result.RowCount)

	_, err := io.WriteString(w, b.String())
	return err
}

func renderCSV(w io.Writer, result *database.QueryResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(result.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(result.Rows); err != nil {
		return err
	}
	return cw.Error()
}

func renderJSON(w io.Writer, result *database.QueryResult) error {
	records := make([]map[string]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		rec := make(map[string]string, len(result.Columns))
		for i, col := range result.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// ColumnWidths returns the display width of each result column, capped at
// limit.
func ColumnWidths(result *database.QueryResult, limit int) []int {
	widths := make([]int, len(result.Columns))
	for i, col := range result.Columns {
		widths[i] = utf8.RuneCountInString(col)
	}
	for _, row := range result.Rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}
	for i := range widths {
		widths[i] = min(max(widths[i], 1), limit)
	}
	return widths
}

// Fit pads or truncates s to exactly width runes.
func Fit(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n > width {
		runes := []rune(s)
		return string(runes[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-n)
}
