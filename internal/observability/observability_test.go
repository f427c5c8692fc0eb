package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"returns-dashboard/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggerConfig{Level: "warn", Format: "json"})

	logger.Info("hidden")
	logger.Warn("visible", "months", 5)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "returns-dashboard", entry["service"])
	assert.Equal(t, float64(5), entry["months"])
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggerConfig{Level: "debug", Format: "text"})

	logger.Debug("loaded")
	assert.Contains(t, buf.String(), "msg=loaded")
	assert.Contains(t, buf.String(), "service=returns-dashboard")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("bogus"))
}

func TestRequestID(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))

	ctx := WithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", GetRequestID(ctx))
}

func TestSpan_ParentChild(t *testing.T) {
	ctx, parent := StartSpan(context.Background(), "load")
	_, child := StartSpan(ctx, "parse")

	assert.Equal(t, parent.TraceID, child.TraceID)
	assert.Equal(t, parent.SpanID, child.ParentID)
	assert.NotEqual(t, parent.SpanID, child.SpanID)
	assert.Same(t, parent, GetSpan(ctx))
}

func TestSpan_Finish(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx, span := StartSpan(context.Background(), "aggregate")
	span.SetAttr("records", 42)
	span.SetError(errors.New("bad row"))
	span.Finish(ctx, logger)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "span finished", entry["msg"])
	assert.Equal(t, "aggregate", entry["operation"])
	assert.Equal(t, "ERROR", entry["status"])
	assert.Equal(t, "bad row", entry["error"])
	assert.Equal(t, float64(42), entry["records"])
	assert.Positive(t, span.Duration)
}
