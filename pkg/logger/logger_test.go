package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestContextAttrsAppearInOutput(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("quill-test", "info", &buf)

	ctx := WithCorrelationID(context.Background(), "corr-123")
	ctx = WithUserID(ctx, "user-456")

	log.InfoContext(ctx, "something happened", "extra", "value")

	entry := logLine(t, &buf)
	assert.Equal(t, "quill-test", entry["service"])
	assert.Equal(t, "corr-123", entry["correlation_id"])
	assert.Equal(t, "user-456", entry["user_id"])
	assert.Equal(t, "value", entry["extra"])
}

func TestBareContextOmitsRequestAttrs(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("quill-test", "info", &buf)

	log.InfoContext(context.Background(), "startup")

	entry := logLine(t, &buf)
	assert.NotContains(t, entry, "correlation_id")
	assert.NotContains(t, entry, "user_id")
	assert.NotContains(t, entry, "trace_id")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("quill-test", "warn", &buf)

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}
