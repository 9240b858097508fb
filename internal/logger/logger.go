package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
	rslog "github.com/gxo-labs/routestate/pkg/routestate/v1/log"
)

const defaultLevel = slog.LevelInfo

// ParseLevel converts a level name (case-insensitive) to a slog.Level.
// Unknown names map to INFO.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return defaultLevel
	}
}

// defaultLogger implements rslog.Logger on top of log/slog.
type defaultLogger struct {
	*slog.Logger
}

var _ rslog.Logger = (*defaultLogger)(nil)

// NewLogger creates a Logger with the given level, format ("text" or "json")
// and writer. A nil writer means os.Stderr.
func NewLogger(levelStr string, formatStr string, writer io.Writer) rslog.Logger {
	if writer == nil {
		writer = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(levelStr),
		ReplaceAttr: replaceLevelAttribute,
	}

	var base slog.Handler
	switch strings.ToLower(formatStr) {
	case "json":
		base = slog.NewJSONHandler(writer, opts)
	default:
		base = slog.NewTextHandler(writer, opts)
	}

	return &defaultLogger{Logger: slog.New(NewOtelHandler(base))}
}

// NewDefaultLogger returns a text logger writing to Stderr.
func NewDefaultLogger(levelStr string) rslog.Logger {
	return NewLogger(levelStr, "text", os.Stderr)
}

// NewDiscardLogger returns a logger that drops every entry. Used by tests and
// by callers that do not want state manager output.
func NewDiscardLogger() rslog.Logger {
	return &defaultLogger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))}
}

var levelStringMap = map[slog.Level]string{
	slog.LevelDebug: "DEBUG",
	slog.LevelInfo:  "INFO",
	slog.LevelWarn:  "WARN",
	slog.LevelError: "ERROR",
}

func replaceLevelAttribute(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	levelStr, exists := levelStringMap[level]
	if !exists {
		levelStr = level.String()
	}
	a.Value = slog.StringValue(levelStr)
	return a
}

func (l *defaultLogger) Debugf(format string, args ...interface{}) {
	if l.Logger.Enabled(context.Background(), slog.LevelDebug) {
		l.Logger.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, args...))
	}
}

func (l *defaultLogger) Infof(format string, args ...interface{}) {
	if l.Logger.Enabled(context.Background(), slog.LevelInfo) {
		l.Logger.Log(context.Background(), slog.LevelInfo, fmt.Sprintf(format, args...))
	}
}

func (l *defaultLogger) Warnf(format string, args ...interface{}) {
	if l.Logger.Enabled(context.Background(), slog.LevelWarn) {
		l.Logger.Log(context.Background(), slog.LevelWarn, fmt.Sprintf(format, args...))
	}
}

// Errorf logs at ERROR. When the last argument is an error it is also logged
// structurally, with state attributes for the state manager's error types.
func (l *defaultLogger) Errorf(format string, args ...interface{}) {
	if !l.Logger.Enabled(context.Background(), slog.LevelError) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	var attrs []any
	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			attrs = ErrorAttrs(err)
		}
	}
	l.Logger.Log(context.Background(), slog.LevelError, msg, attrs...)
}

// ErrorAttrs returns structured attributes describing err.
func ErrorAttrs(err error) []any {
	var (
		mm       *rserrors.TypeMismatchError
		reserved *rserrors.ReservedStateError
		legacy   *rserrors.LegacyStateError
		dispatch *rserrors.DispatchError
	)
	switch {
	case errors.As(err, &mm):
		return []any{
			slog.String("error_type", "TypeMismatchError"),
			slog.String("state_id", mm.StateID),
			slog.String("stored_type", mm.Stored),
			slog.String("requested_type", mm.Requested),
		}
	case errors.As(err, &reserved):
		return []any{
			slog.String("error_type", "ReservedStateError"),
			slog.String("state_id", reserved.StateID),
			slog.String("operation", reserved.Operation),
		}
	case errors.As(err, &legacy):
		return []any{
			slog.String("error_type", "LegacyStateError"),
			slog.String("state_id", legacy.StateID),
			slog.String("operation", legacy.Operation),
		}
	case errors.As(err, &dispatch):
		return []any{
			slog.String("error_type", "DispatchError"),
			slog.String("trigger", dispatch.Trigger),
			slog.String("role", dispatch.Role),
			slog.String("error", dispatch.Cause.Error()),
		}
	default:
		return []any{slog.String("error", err.Error())}
	}
}

func (l *defaultLogger) Log(level slog.Level, msg string, args ...interface{}) {
	l.Logger.Log(context.Background(), level, msg, args...)
}

func (l *defaultLogger) LogCtx(ctx context.Context, level slog.Level, msg string, args ...interface{}) {
	l.Logger.Log(ctx, level, msg, args...)
}

func (l *defaultLogger) With(args ...interface{}) rslog.Logger {
	return &defaultLogger{Logger: l.Logger.With(args...)}
}

func (l *defaultLogger) IsEnabled(level slog.Level) bool {
	return l.Logger.Enabled(context.Background(), level)
}
