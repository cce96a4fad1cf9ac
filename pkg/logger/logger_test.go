package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestWithContext_InjectsIDs(t *testing.T) {
	var buf bytes.Buffer
	prev := globalLogger
	globalLogger = slog.New(NewHandler(&buf, Config{Level: "debug", Format: "json"}))
	t.Cleanup(func() { globalLogger = prev })

	ctx := NewContext(context.Background(), "trace-1", "req-1")
	assert.Equal(t, "trace-1", TraceID(ctx))
	assert.Equal(t, "req-1", RequestID(ctx))

	Warn(ctx, "early exercise not supported", "method", "MONTE_CARLO")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "trace-1", entry["trace_id"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "MONTE_CARLO", entry["method"])
}

func TestNewContext_SkipsEmptyIDs(t *testing.T) {
	ctx := NewContext(context.Background(), "", "")
	assert.Empty(t, TraceID(ctx))
	assert.Empty(t, RequestID(ctx))
}
