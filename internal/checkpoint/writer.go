// Package checkpoint persists scraped rows to an append-only CSV file in
// fixed-size batches, so an interrupted run loses at most one batch.
package checkpoint

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
)

// bom is the UTF-8 byte order mark written once at the start of the file.
var bom = []byte{0xEF, 0xBB, 0xBF}

// ErrHeaderMismatch means the existing output was written with another schema.
var ErrHeaderMismatch = errors.New("la cabecera del CSV existente no coincide")

// Writer buffers rows and appends them to path once batchSize rows are
// pending. It is not safe for concurrent use.
type Writer struct {
	path      string
	batchSize int
	buf       [][]string
	written   int
	open      func(path string) (io.WriteCloser, error)
}

func openAppend(path string) (io.WriteCloser, error) {
	return os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
}

// Open prepares path for appending. When the file does not exist, or is
// empty, it is created with a BOM and header. An existing file keeps its
// content and must carry the same header.
func Open(path string, header []string, batchSize int) (*Writer, error) {
	if batchSize < 1 {
		batchSize = 1
	}

	st, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist) || (err == nil && st.Size() == 0):
		if err := writeHeader(path, header); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("consultando %s: %w", path, err)
	default:
		existing, err := ReadHeader(path)
		if err != nil {
			return nil, err
		}
		if !slices.Equal(existing, header) {
			return nil, fmt.Errorf("%s: %w", path, ErrHeaderMismatch)
		}
	}

	return &Writer{path: path, batchSize: batchSize, open: openAppend}, nil
}

func writeHeader(path string, header []string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creando %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(bom); err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// Add buffers row and flushes when the batch is full. It reports whether a
// flush happened.
func (w *Writer) Add(row []string) (bool, error) {
	w.buf = append(w.buf, row)
	if len(w.buf) < w.batchSize {
		return false, nil
	}
	if err := w.Flush(); err != nil {
		return false, err
	}
	return true, nil
}

// Flush appends every buffered row without a header and clears the buffer.
// If the file cannot be opened the rows stay buffered. Once an append has
// started they are dropped even on failure, since part of them may already
// be on disk and a retry would duplicate them.
func (w *Writer) Flush() error {
	if len(w.buf) == 0 {
		return nil
	}

	f, err := w.open(w.path)
	if err != nil {
		return fmt.Errorf("abriendo %s: %w", w.path, err)
	}

	n := len(w.buf)
	cw := csv.NewWriter(f)
	err = cw.WriteAll(w.buf)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	w.buf = w.buf[:0]
	if err != nil {
		return fmt.Errorf("escribiendo %s (%d filas descartadas): %w", w.path, n, err)
	}

	w.written += n
	return nil
}

// Pending returns the number of buffered rows.
func (w *Writer) Pending() int { return len(w.buf) }

// Written returns the number of rows appended by this writer.
func (w *Writer) Written() int { return w.written }

// Close flushes the remaining partial batch.
func (w *Writer) Close() error {
	return w.Flush()
}
