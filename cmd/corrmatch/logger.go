package main

import (
	"log/slog"
	"os"
)

// NewLogger returns a structured slog.Logger with the given level,
// writing JSON lines to stderr so stdout stays reserved for the
// match-result JSON (spec.md §6: "prints match(es) as JSON" to
// stdout). Grounded on the teacher's root logger.go, which wires the
// same slog.NewJSONHandler but to stdout, since the teacher's GUI app
// has no result stream to keep clean.
func NewLogger(level slog.Leveler) *slog.Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(h)
}
