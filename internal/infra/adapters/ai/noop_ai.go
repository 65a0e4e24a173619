package ai

import (
	"context"
	"time"

	"invoice-qa-review/internal/domain/ports/adapter"
)

var _ adapter.AIServiceAdapter = (*NoopAIAdapter)(nil)

// noopReply is a well-formed verdict so every frontend can be exercised offline.
const noopReply = `{"corrected":"(noop) invoice text unchanged. Job complete","alerts":["noop provider: no review was performed"],"suggestions":"Configure ai.provider and an API key for real reviews."}`

// NoopAIAdapter answers every chat with a canned verdict, for local/dev runs.
type NoopAIAdapter struct {
	delay time.Duration
}

func NewNoopAIAdapter(delay time.Duration) *NoopAIAdapter {
	return &NoopAIAdapter{delay: delay}
}

func (a *NoopAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{"noop"}, nil
}

func (a *NoopAIAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{Name: "noop", Description: "Canned reviewer for development", Supports: []string{"text"}}, nil
}

func (a *NoopAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	n := 0
	for _, m := range messages {
		n += len(m.Content) / 4
	}
	return n, nil
}

func (a *NoopAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := a.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (a *NoopAIAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	// Simulate processing time and respect ctx
	select {
	case <-time.After(a.delay):
	case <-ctx.Done():
		return "", adapter.Usage{}, ctx.Err()
	}
	in, _ := a.CountTokens(ctx, model, messages)
	out := len(noopReply) / 4
	return noopReply, adapter.Usage{PromptTokens: in, CompletionTokens: out, TotalTokens: in + out}, nil
}
