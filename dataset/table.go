// Package dataset loads, cleans, encodes and splits tabular datasets.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Table is an in-memory tabular dataset: an ordered header plus string rows.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ReadOptions controls CSV parsing.
type ReadOptions struct {
	Comma  rune // field separator, ',' when zero
	Latin1 bool // decode ISO-8859-1 input before parsing
}

// ReadCSV reads a CSV file with a header row into a Table.
func ReadCSV(path string, opts ReadOptions) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var source io.Reader = file
	if opts.Latin1 {
		source = transform.NewReader(file, charmap.ISO8859_1.NewDecoder())
	}

	reader := csv.NewReader(source)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = trimQuotes(header[i])
	}

	table := &Table{Columns: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		for i := range row {
			row[i] = trimQuotes(row[i])
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// WriteCSV writes the table with its header, creating parent directories.
func (t *Table) WriteCSV(path string) error {
	if len(t.Columns) == 0 {
		return errors.New("table has no columns")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(t.Columns); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of a named column, -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Column returns all values of a named column.
func (t *Table) Column(name string) ([]string, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("column %q not found", name)
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx >= len(row) {
			return nil, fmt.Errorf("row %d has %d cells, want column %d", i, len(row), idx)
		}
		values[i] = row[idx]
	}
	return values, nil
}

func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
