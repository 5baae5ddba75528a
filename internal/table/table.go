// Package table holds transient tabular datasets moved between SharePoint,
// SQL Server, and local CSV/XLSX files. Every cell is a string: upstream
// reports mix numeric codes with free text, and the import path forces a
// uniform type so nothing is silently coerced.
package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Table is an ordered set of named columns with string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns all values of the named column in row order.
// A missing column is an error: fetched tables are expected to carry the
// columns the job was configured for.
func (t *Table) Column(name string) ([]string, error) {
	idx := t.columnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found (have: %s)", name, strings.Join(t.Columns, ", "))
	}
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		values = append(values, row[idx])
	}
	return values, nil
}

// RowMap returns row i keyed by column name.
func (t *Table) RowMap(i int) map[string]string {
	row := make(map[string]string, len(t.Columns))
	for idx, col := range t.Columns {
		row[col] = t.Rows[i][idx]
	}
	return row
}

// MissingByColumn counts empty cells per column.
func (t *Table) MissingByColumn() map[string]int {
	missing := make(map[string]int, len(t.Columns))
	for _, col := range t.Columns {
		missing[col] = 0
	}
	for _, row := range t.Rows {
		for idx, cell := range row {
			if strings.TrimSpace(cell) == "" {
				missing[t.Columns[idx]]++
			}
		}
	}
	return missing
}

func (t *Table) columnIndex(name string) int {
	for idx, col := range t.Columns {
		if col == name {
			return idx
		}
	}
	return -1
}

// decoderFor maps a config encoding name to a text decoder. The default
// decoder also strips a UTF-8 BOM, which Excel likes to prepend to CSVs.
func decoderFor(name string) (*encoding.Decoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8BOM.NewDecoder(), nil
	case "windows-1252", "cp1252", "latin1":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// ReadCSV reads CSV data into a Table. The first record is the header.
// enc selects the source encoding; empty means UTF-8.
func ReadCSV(r io.Reader, enc string) (*Table, error) {
	dec, err := decoderFor(enc)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(transform.NewReader(r, dec))
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("CSV has no header row")
	}

	return &Table{Columns: records[0], Rows: records[1:]}, nil
}

// WriteCSV writes the table as CSV, header first.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadXLSX reads a worksheet into a Table. An empty sheet name selects the
// first sheet in the workbook.
func ReadXLSX(data []byte, sheet string) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}

	header := rows[0]
	t := &Table{Columns: header}
	for i, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d has %d cells but the header has %d columns", i+2, len(row), len(header))
		}
		// excelize trims trailing empty cells; pad back to header width.
		for len(row) < len(header) {
			row = append(row, "")
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// WriteXLSX writes the table as a single-sheet workbook.
func (t *Table) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sw, err := f.NewStreamWriter("Sheet1")
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	cell, _ := excelize.CoordinatesToCellName(1, 1)
	if err := sw.SetRow(cell, header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range t.Rows {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush workbook: %w", err)
	}
	return f.Write(w)
}
