package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gxo-labs/routestate/internal/logger"
	rserrors "github.com/gxo-labs/routestate/pkg/routestate/v1/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec), line)
		out = append(out, rec)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, logger.ParseLevel("WARN"))
	assert.Equal(t, slog.LevelError, logger.ParseLevel("Error"))
	assert.Equal(t, slog.LevelInfo, logger.ParseLevel("verbose"))
}

func TestNewLogger_JSONLevelsAndAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger("info", "json", &buf).With("run_id", "r-1")

	log.Debugf("hidden %d", 1)
	log.Infof("visible %d", 2)
	assert.False(t, log.IsEnabled(slog.LevelDebug))
	assert.True(t, log.IsEnabled(slog.LevelWarn))

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "INFO", recs[0]["level"])
	assert.Equal(t, "visible 2", recs[0]["msg"])
	assert.Equal(t, "r-1", recs[0]["run_id"])
}

func TestErrorf_AddsStateAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger("debug", "json", &buf)

	mm := rserrors.NewTypeMismatchError("slack", 12, "string", "float64")
	log.Errorf("read failed: %v", mm)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "ERROR", recs[0]["level"])
	assert.Equal(t, "TypeMismatchError", recs[0]["error_type"])
	assert.Equal(t, "slack", recs[0]["state_id"])
	assert.Equal(t, "string", recs[0]["stored_type"])
	assert.Equal(t, "float64", recs[0]["requested_type"])
}

func TestErrorAttrs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"reserved", rserrors.NewReservedStateError("load", 0, "PutActivityState"), "ReservedStateError"},
		{"legacy", rserrors.NewLegacyStateError("old", -1, "RouteState"), "LegacyStateError"},
		{"dispatch", rserrors.NewDispatchError("job_inserted", "forward visitor", errors.New("boom")), "DispatchError"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := logger.ErrorAttrs(tt.err)
			require.NotEmpty(t, attrs)
			first, ok := attrs[0].(slog.Attr)
			require.True(t, ok)
			assert.Equal(t, "error_type", first.Key)
			assert.Equal(t, tt.want, first.Value.String())
		})
	}

	plain := logger.ErrorAttrs(errors.New("plain"))
	require.Len(t, plain, 1)
	assert.Equal(t, "error", plain[0].(slog.Attr).Key)
}

func TestOtelHandler_AddsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLogger("info", "json", &buf)
	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, span := tp.Tracer("test").Start(context.Background(), "dispatch")
	log.LogCtx(ctx, slog.LevelInfo, "inside span")
	span.End()
	log.LogCtx(context.Background(), slog.LevelInfo, "outside span")

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 2)
	assert.Equal(t, span.SpanContext().TraceID().String(), recs[0]["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), recs[0]["span_id"])
	assert.NotContains(t, recs[1], "trace_id")
}

func TestNewDiscardLogger(t *testing.T) {
	log := logger.NewDiscardLogger()
	assert.False(t, log.IsEnabled(slog.LevelError))
	log.Errorf("dropped %v", errors.New("x"))
}
