// Package log defines the public logging interface used across routestate packages.
package log

import (
	"context"
	"log/slog"
)

// Logger defines the logging operations used by the state manager and its
// updaters. It mirrors common slog-style logging patterns so callers can plug
// in their own implementation.
type Logger interface {
	// Debugf logs a formatted message at the DEBUG level.
	Debugf(format string, args ...interface{})
	// Infof logs a formatted message at the INFO level.
	Infof(format string, args ...interface{})
	// Warnf logs a formatted message at the WARN level.
	Warnf(format string, args ...interface{})
	// Errorf logs a formatted message at the ERROR level.
	Errorf(format string, args ...interface{})

	// Log logs a message at the given level with key-value attributes.
	Log(level slog.Level, msg string, args ...interface{})
	// LogCtx is Log with a context, allowing trace ids to be attached.
	LogCtx(ctx context.Context, level slog.Level, msg string, args ...interface{})

	// With returns a Logger adding the given attributes to every entry.
	With(args ...interface{}) Logger
	// IsEnabled reports whether entries at level are emitted. Hot paths use it
	// to skip building attributes for discarded entries.
	IsEnabled(level slog.Level) bool
}
