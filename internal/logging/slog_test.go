package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level slog.Level) (*SlogLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})

	return NewSlog(slog.New(handler)), buf
}

func TestNewSlogDefault(t *testing.T) {
	logger := NewSlogDefault()

	require.NotNil(t, logger)
	require.NotNil(t, logger.logger)
}

func TestSlogLogger_Levels(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelDebug)

	logger.Debug("window sized", "window", 131072)
	logger.Info("bootstrap done", "primes", 12251)
	logger.Warn("cache level fallback", "level", 3)
	logger.Error("merge failed", "error", "timeout")

	output := buf.String()
	assert.Contains(t, output, "level=DEBUG")
	assert.Contains(t, output, "window=131072")
	assert.Contains(t, output, "level=INFO")
	assert.Contains(t, output, "primes=12251")
	assert.Contains(t, output, "level=WARN")
	assert.Contains(t, output, "level=ERROR")
	assert.Contains(t, output, "error=timeout")
}

func TestSlogLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	assert.Empty(t, buf.String())

	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestNewText(t *testing.T) {
	t.Run("honors the requested level", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger, err := NewText(buf, "WARN")
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("shown", "rank", 2)

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "rank=2")
	})

	t.Run("rejects unknown levels", func(t *testing.T) {
		_, err := NewText(&bytes.Buffer{}, "verbose")
		require.Error(t, err)
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" Info ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()

	require.NotPanics(t, func() {
		logger.Debug("debug", "k", "v")
		logger.Info("info")
		logger.Warn("warn")
		logger.Error("error")
		logger.Fatal("fatal")
	})
}
