package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"invoice-qa-review/internal/domain"
	"invoice-qa-review/internal/domain/ports/adapter"
	"invoice-qa-review/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*CompatAdapter)(nil)

const providerCompat = "compat"

// CompatAdapter talks to any OpenAI-compatible gateway over plain HTTP
// (POST {base}/chat/completions, Authorization: Bearer <key>).
type CompatAdapter struct {
	apiKey      string
	base        string // e.g., https://gateway.example.com/openai/v1
	model       string
	temperature float64
	client      *http.Client
}

func NewCompatAdapter(apiKey, model, base string, temperature float64, client *http.Client) (*CompatAdapter, error) {
	if base == "" {
		return nil, errors.New("compat base url empty")
	}
	if model == "" {
		model = "gpt-4o"
	}
	if client == nil {
		client = &http.Client{}
	}
	return &CompatAdapter{
		apiKey:      apiKey,
		base:        strings.TrimRight(base, "/"),
		model:       model,
		temperature: temperature,
		client:      client,
	}, nil
}

func (m *CompatAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{m.model}, nil
}

func (m *CompatAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	return adapter.ModelInfo{
		Name:        modelOrDefault(model, m.model),
		Description: "OpenAI-compatible gateway model",
		Supports:    []string{"text"},
	}, nil
}

// CountTokens is not offered by compatible gateways.
func (m *CompatAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	return 0, errors.New("compat: token counting not supported")
}

func (m *CompatAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := m.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (m *CompatAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	model = modelOrDefault(model, m.model)
	if m.apiKey == "" {
		return "", adapter.Usage{}, &domain.CompletionError{Provider: providerCompat, Kind: domain.CompletionAuth, Err: domain.ErrMissingAPIKey}
	}

	reqBody := struct {
		Model       string            `json:"model"`
		Messages    []adapter.Message `json:"messages"`
		Temperature float64           `json:"temperature"`
	}{Model: model, Messages: messages, Temperature: m.temperature}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", adapter.Usage{}, &domain.CompletionError{Provider: providerCompat, Kind: domain.CompletionBadRequest, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.base+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", adapter.Usage{}, &domain.CompletionError{Provider: providerCompat, Kind: domain.CompletionBadRequest, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	start := time.Now()
	fail := func(ce *domain.CompletionError) (string, adapter.Usage, error) {
		metrics.ObserveChatUsage(providerCompat, model, 0, 0, 0, int(time.Since(start).Milliseconds()), false)
		metrics.IncAICallError(providerCompat, string(ce.Kind))
		return "", adapter.Usage{}, ce
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return fail(&domain.CompletionError{Provider: providerCompat, Kind: domain.CompletionUnavailable, Err: err})
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fail(&domain.CompletionError{
			Provider:   providerCompat,
			Kind:       domain.CompletionKindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("compat http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		})
	}

	var payload struct {
		Choices []struct {
			Message adapter.Message `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return fail(&domain.CompletionError{Provider: providerCompat, Kind: domain.CompletionUnknown, Err: fmt.Errorf("decode response: %w", err)})
	}
	u := adapter.Usage{
		PromptTokens:     payload.Usage.PromptTokens,
		CompletionTokens: payload.Usage.CompletionTokens,
		TotalTokens:      payload.Usage.TotalTokens,
	}
	for _, c := range payload.Choices {
		if c.Message.Content != "" {
			metrics.ObserveChatUsage(providerCompat, model, u.PromptTokens, u.CompletionTokens, u.TotalTokens, int(time.Since(start).Milliseconds()), true)
			return c.Message.Content, u, nil
		}
	}
	return fail(&domain.CompletionError{Provider: providerCompat, Kind: domain.CompletionEmpty, Err: errors.New("no choice content")})
}
