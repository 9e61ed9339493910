package checkpoint

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDiskFull = errors.New("no space left on device")

// shortFile accepts limit bytes, appends them to the real file and then fails.
type shortFile struct {
	f     *os.File
	limit int
}

func (s *shortFile) Write(p []byte) (int, error) {
	if len(p) <= s.limit {
		s.limit -= len(p)
		return s.f.Write(p)
	}
	n, _ := s.f.Write(p[:s.limit])
	s.limit = 0
	return n, errDiskFull
}

func (s *shortFile) Close() error { return s.f.Close() }

func TestFlushFailureDropsPartialBatch(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := Open(path, []string{"ID", "Estado"}, 10)
	require.NoError(t, err)

	opens := 0
	w.open = func(p string) (io.WriteCloser, error) {
		opens++
		f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		return &shortFile{f: f, limit: 5}, nil
	}

	_, err = w.Add([]string{"1", "OK"})
	require.NoError(t, err)
	_, err = w.Add([]string{"2", "Sin resultados"})
	require.NoError(t, err)

	require.ErrorIs(t, w.Flush(), errDiskFull)
	assert.Zero(t, w.Pending())
	assert.Zero(t, w.Written())

	// Close after a failed append must not write the rows a second time.
	require.NoError(t, w.Close())
	assert.Equal(t, 1, opens)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, countSubstr(string(raw), "1,OK"))
}

func TestFlushKeepsRowsWhenFileCannotOpen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.csv")
	w, err := Open(path, []string{"ID", "Estado"}, 10)
	require.NoError(t, err)

	w.open = func(string) (io.WriteCloser, error) { return nil, os.ErrPermission }
	_, err = w.Add([]string{"1", "OK"})
	require.NoError(t, err)

	require.ErrorIs(t, w.Flush(), os.ErrPermission)
	assert.Equal(t, 1, w.Pending())

	w.open = openAppend
	require.NoError(t, w.Close())
	assert.Equal(t, 1, w.Written())

	n, err := CountRows(path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func countSubstr(s, sub string) int {
	n := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			n++
		}
	}
	return n
}
