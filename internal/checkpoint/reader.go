package checkpoint

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
)

// Table is an output file read back into memory.
type Table struct {
	Header []string
	Rows   [][]string
}

// Column returns the index of the named header or -1.
func (t Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Get returns the named cell of row i or "".
func (t Table) Get(i int, name string) string {
	j := t.Column(name)
	if j < 0 || i < 0 || i >= len(t.Rows) || j >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][j]
}

func newReader(f *os.File) (*csv.Reader, error) {
	br := bufio.NewReader(f)
	lead, err := br.Peek(len(bom))
	if err == nil && bytes.Equal(lead, bom) {
		if _, err := br.Discard(len(bom)); err != nil {
			return nil, err
		}
	}
	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	return r, nil
}

// ReadHeader returns the first record of path, without the BOM.
func ReadHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := newReader(f)
	if err != nil {
		return nil, err
	}
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leyendo cabecera de %s: %w", path, err)
	}
	return header, nil
}

// ReadAll loads up to limit data rows of path (limit <= 0 means all).
func ReadAll(path string, limit int) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	r, err := newReader(f)
	if err != nil {
		return Table{}, err
	}

	var t Table
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return t, fmt.Errorf("leyendo %s: %w", path, err)
		}
		if t.Header == nil {
			t.Header = rec
			continue
		}
		if limit > 0 && len(t.Rows) >= limit {
			break
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// CountRows returns the number of data rows in path. A missing file has zero.
func CountRows(path string) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer f.Close()

	r, err := newReader(f)
	if err != nil {
		return 0, err
	}
	r.ReuseRecord = true

	n := -1
	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("contando filas de %s: %w", path, err)
		}
		n++
	}
	if n < 0 {
		return 0, nil
	}
	return n, nil
}

// Latest returns the CSV in dir whose name sorts last, or "" when there is
// none. Timestamped output names sort chronologically.
func Latest(dir string) string {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return slices.Max(matches)
}
