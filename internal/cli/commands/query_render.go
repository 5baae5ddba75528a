package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/provanalytics/provsync/internal/table"
)

func renderResults(w io.Writer, tbl *table.Table, format string) error {
	switch format {
	case "json":
		return renderJSON(w, tbl)
	case "csv":
		return tbl.WriteCSV(w)
	case "md", "markdown":
		return renderMarkdown(w, tbl)
	default:
		return renderTable(w, tbl)
	}
}

func renderTable(w io.Writer, tbl *table.Table) error {
	if tbl.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := prettytable.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(prettytable.StyleLight)

	headerRow := make(prettytable.Row, len(tbl.Columns))
	for i, col := range tbl.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, r := range tbl.Rows {
		row := make(prettytable.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		t.AppendRow(row)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", tbl.Len())
	return nil
}

func renderJSON(w io.Writer, tbl *table.Table) error {
	results := make([]map[string]string, 0, tbl.Len())
	for i := range tbl.Rows {
		results = append(results, tbl.RowMap(i))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderMarkdown(w io.Writer, tbl *table.Table) error {
	if tbl.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(tbl.Columns, " | "))
	seps := make([]string, len(tbl.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range tbl.Rows {
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | "))
	}
	return nil
}
