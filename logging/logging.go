// SPDX-License-Identifier: MIT

// Package logging builds the structured loggers used by the nls solver and
// the nlsfit command.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"
)

// TimeFormat is the timestamp layout of every logger built here.
const TimeFormat = "15:04:05"

// levelOff is above every level slog defines, so nothing is enabled.
const levelOff = slog.Level(1 << 20)

// New returns a tint-formatted logger writing to w at the given level.
func New(w io.Writer, level slog.Level, noColor bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: TimeFormat,
		NoColor:    noColor,
	}))
}

// Discard returns a logger with every level disabled.
func Discard() *slog.Logger {
	return New(io.Discard, levelOff, true)
}

// ParseLevel maps debug, info, warn and error (any case) to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("logging: %w", err)
	}

	return l, nil
}
