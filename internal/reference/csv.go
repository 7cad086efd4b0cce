package reference

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ironsheep/tangram-classifier/internal/features"
)

// Separator is the field delimiter of reference CSV files.
const Separator = ';'

var (
	// ErrMissingClass is returned when a CSV header has no class column.
	ErrMissingClass = errors.New("reference: no " + features.ClassColumn + " column")

	// ErrDuplicateIndex is returned when two CSV rows carry the same index.
	ErrDuplicateIndex = errors.New("reference: duplicate row index")
)

// ReadCSV parses a reference table.
//
// The first line is a header. A first column with an empty name (or
// "index") holds row numbers; the column named "classe" holds labels; every
// other column is a feature key. Empty cells are absent features.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = Separator
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Table{}, nil
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	classCol := -1
	indexCol := -1
	for i, name := range header {
		switch {
		case name == features.ClassColumn:
			classCol = i
		case i == 0 && (name == "" || name == "index"):
			indexCol = 0
		}
	}
	if classCol < 0 {
		return nil, ErrMissingClass
	}

	table := &Table{}
	seen := make(map[int]int)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("line %d: got %d fields, want %d", line, len(record), len(header))
		}

		row := Row{Index: len(table.Rows), Vector: features.Vector{}}
		for i, cell := range record {
			cell = strings.TrimSpace(cell)
			switch i {
			case classCol:
				row.Label = cell
			case indexCol:
				if cell == "" {
					continue
				}
				idx, err := strconv.Atoi(cell)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid row index %q: %w", line, cell, err)
				}
				row.Index = idx
			default:
				if cell == "" {
					continue
				}
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, fmt.Errorf("line %d, column %s: %w", line, header[i], err)
				}
				row.Vector[header[i]] = v
			}
		}
		if first, ok := seen[row.Index]; ok {
			return nil, fmt.Errorf("line %d: %w %d, first used on line %d", line, ErrDuplicateIndex, row.Index, first)
		}
		seen[row.Index] = line
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// WriteCSV writes a table in the format read by ReadCSV, with an index
// column, the table's feature columns and the class column.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = Separator

	columns := t.Columns()
	header := make([]string, 0, len(columns)+2)
	header = append(header, "")
	header = append(header, columns...)
	header = append(header, features.ClassColumn)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range t.Rows {
		record := make([]string, 0, len(header))
		record = append(record, strconv.Itoa(row.Index))
		for _, c := range columns {
			v, ok := row.Vector[c]
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
		}
		record = append(record, row.Label)
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadCSV reads a reference table from a file.
func LoadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference table: %w", err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// SaveCSV writes a reference table to a file, replacing it.
func SaveCSV(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create reference table: %w", err)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
