// Package roster reads the list of researcher names from a spreadsheet.
package roster

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// DefaultColumn is the header of the full-name column.
const DefaultColumn = "Nombre Completo"

// ErrColumnNotFound means the header row lacks the requested column.
var ErrColumnNotFound = errors.New("columna no encontrada")

// Entry is one name to look up.
type Entry struct {
	// Row is the 1-based spreadsheet row, header included.
	Row  int
	Name string
}

// Options selects where the names live. Zero values pick the first sheet
// and DefaultColumn.
type Options struct {
	Sheet  string
	Column string
}

// Load reads every non-blank name from the workbook at path.
func Load(path string, opts Options) ([]Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("abriendo %s: %w", path, err)
	}
	defer f.Close()
	return read(f, opts)
}

// Read is Load over an already opened stream.
func Read(r io.Reader, opts Options) ([]Entry, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("abriendo planilla: %w", err)
	}
	defer f.Close()
	return read(f, opts)
}

func read(f *excelize.File, opts Options) ([]Entry, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("la planilla no tiene hojas")
		}
		sheet = sheets[0]
	}
	column := opts.Column
	if column == "" {
		column = DefaultColumn
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("leyendo hoja %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%q en hoja vacía %q: %w", column, sheet, ErrColumnNotFound)
	}

	col := -1
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(h), column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%q en hoja %q: %w", column, sheet, ErrColumnNotFound)
	}

	entries := make([]Entry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		name := strings.Join(strings.Fields(row[col]), " ")
		if name == "" {
			continue
		}
		entries = append(entries, Entry{Row: i + 2, Name: name})
	}
	return entries, nil
}
