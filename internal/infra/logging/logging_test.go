package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-qa-review/internal/config"
	"invoice-qa-review/internal/infra/logging"
)

func TestWithAddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := logging.WithTraceID(context.Background(), "t-1")
	ctx = logging.WithReviewID(ctx, "r-1")
	ctx = logging.WithChatID(ctx, 42)
	logging.With(ctx, &base).Info().Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "t-1", line["trace_id"])
	assert.Equal(t, "r-1", line["review_id"])
	assert.EqualValues(t, 42, line["chat_id"])
	assert.Equal(t, "t-1", logging.TraceID(ctx))
}

func TestWithNilBase(t *testing.T) {
	assert.NotNil(t, logging.With(context.Background(), nil))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "***", logging.Redact("short", false))
	assert.Equal(t, "sk-p...yz", logging.Redact("sk-prod-abcxyz", false))
	assert.Equal(t, "sk-prod-abcxyz", logging.Redact("sk-prod-abcxyz", true))
}

func TestNewWritesToFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "app.log")
	l, closer, err := logging.New(config.LogConfig{Level: "info", File: p}, false)
	require.NoError(t, err)
	l.Info().Str("k", "v").Msg("to file")
	require.NoError(t, closer.Close())

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"k":"v"`)
}

func TestNewToUsesGivenWriter(t *testing.T) {
	var buf bytes.Buffer
	l, closer, err := logging.NewTo(&buf, config.LogConfig{Level: "info", Format: "json"}, false)
	require.NoError(t, err)
	defer closer.Close()

	l.Debug().Msg("below level")
	l.Warn().Str("k", "v").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "kept", line["message"])
	assert.Equal(t, "v", line["k"])
}
