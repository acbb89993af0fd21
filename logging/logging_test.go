// SPDX-License-Identifier: MIT

package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/InaEriksson/TSRT14/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesAtLevel(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(&buf, slog.LevelInfo, true)

	log.Debug("hidden", "k", 1)
	assert.Empty(t, buf.String())

	log.Info("iteration", "cost", 0.5)
	out := buf.String()
	assert.Contains(t, out, "iteration")
	assert.Contains(t, out, "cost=0.5")
	assert.NotContains(t, out, "\x1b[", "NoColor must suppress ANSI escapes")
}

func TestDiscardDisablesEverything(t *testing.T) {
	log := logging.Discard()
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		assert.False(t, log.Enabled(context.Background(), l), l.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range tests {
		got, err := logging.ParseLevel(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}

	_, err := logging.ParseLevel("loud")
	assert.Error(t, err)
}
