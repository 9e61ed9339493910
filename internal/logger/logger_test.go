package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	l, err := New(Config{Level: "debug", Development: true})
	require.NoError(t, err)
	child := l.With(String("run_id", "abc"))
	assert.NotNil(t, child)
	child.Info("ok", Int("id", 1))
}

func TestNewRejectsBadEncoding(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Encoding: "xml"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	t.Parallel()

	l := NewNop()
	l.With(String("k", "v")).Error("ignored")
	assert.NoError(t, l.Sync())
}
