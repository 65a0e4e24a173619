package ai_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-qa-review/internal/config"
	"invoice-qa-review/internal/domain"
	"invoice-qa-review/internal/domain/model"
	"invoice-qa-review/internal/domain/ports/adapter"
	ai "invoice-qa-review/internal/infra/adapters/ai"
)

func TestNewFromConfig_KeylessOpenAIFailsAtCallTime(t *testing.T) {
	a, err := ai.NewFromConfig(context.Background(), config.AIConfig{Provider: "openai", Model: "gpt-4o", Temperature: 0.2, ConcurrentLimit: 1}, nil)
	require.NoError(t, err)

	_, _, err = a.ChatWithUsage(context.Background(), "gpt-4o", []adapter.Message{{Role: "user", Content: "x"}})
	var ce *domain.CompletionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, domain.CompletionAuth, ce.Kind)
}

func TestNewFromConfig_NoopRepliesWithDecodableVerdict(t *testing.T) {
	a, err := ai.NewFromConfig(context.Background(), config.AIConfig{Provider: "noop"}, nil)
	require.NoError(t, err)

	reply, err := a.Chat(context.Background(), "", []adapter.Message{{Role: "user", Content: "x"}})
	require.NoError(t, err)
	res, err := model.DecodeReviewResult(reply)
	require.NoError(t, err)
	assert.Len(t, res.Alerts, 1)
}

func TestNewFromConfig_CompatNeedsBaseURL(t *testing.T) {
	_, err := ai.NewFromConfig(context.Background(), config.AIConfig{Provider: "compat", CompatKey: "k"}, nil)
	assert.Error(t, err)
}

func TestNewFromConfig_UnknownProvider(t *testing.T) {
	_, err := ai.NewFromConfig(context.Background(), config.AIConfig{Provider: "bard"}, nil)
	assert.Error(t, err)
}
