package log

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		level      int
		allowedLvl int
		want       bool
	}{
		{InfoLevel, InfoLevel, true},
		{DebugLevel, InfoLevel, false},
		{ErrorLevel, DebugLevel, true},
		{WarnLevel, ErrorLevel, false},
		{WarnLevel, DebugLevel, true},
	}

	for i, test := range tests {
		var b bytes.Buffer
		writer := bufio.NewWriter(&b)
		logger := New(zapcore.AddSync(writer), test.allowedLvl)

		var logging func(...interface{})
		switch test.level {
		case DebugLevel:
			logging = logger.Debug
		case InfoLevel:
			logging = logger.Info
		case WarnLevel:
			logging = logger.Warn
		case ErrorLevel:
			logging = logger.Error
		default:
			t.FailNow()
		}

		logging("hello")
		writer.Flush()

		if test.want {
			require.Contains(t, b.String(), "hello", "test %d", i)
		} else {
			require.Empty(t, b.String(), "test %d", i)
		}
	}
}

func TestWithAndNamed(t *testing.T) {
	var b bytes.Buffer
	writer := bufio.NewWriter(&b)
	logger := New(zapcore.AddSync(writer), InfoLevel).Named("cli").With("key", "abc")

	logger.Infow("encrypted", "pixels", 4096)
	writer.Flush()

	out := b.String()
	require.Contains(t, out, "cli")
	require.Contains(t, out, "abc")
	require.Contains(t, out, "encrypted")
	require.Contains(t, out, "4096")
}
