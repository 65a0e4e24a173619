package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/genai"

	"invoice-qa-review/internal/domain"
	"invoice-qa-review/internal/domain/ports/adapter"
	"invoice-qa-review/internal/infra/metrics"
)

var _ adapter.AIServiceAdapter = (*GeminiAdapter)(nil)

const providerGemini = "gemini"

type GeminiAdapter struct {
	client       *genai.Client // nil when no key was configured
	defaultModel string
	temperature  float32
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
// With an empty key no client is built and every call reports an auth error.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, defaultModel string, temperature float64) (*GeminiAdapter, error) {
	g := &GeminiAdapter{defaultModel: defaultModel, temperature: float32(temperature)}
	if apiKey == "" {
		return g, nil
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	g.client = c
	return g, nil
}

func (g *GeminiAdapter) ListModels(ctx context.Context) ([]string, error) {
	if g.client == nil {
		return []string{g.defaultModel}, nil
	}
	var out []string
	for m, err := range g.client.Models.All(ctx) {
		if err != nil {
			break
		}
		if m != nil && m.Name != "" {
			out = append(out, m.Name)
		}
	}
	if len(out) == 0 && g.defaultModel != "" {
		out = []string{g.defaultModel}
	}
	return out, nil
}

func (g *GeminiAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	model = modelOrDefault(model, g.defaultModel)
	if g.client == nil {
		return adapter.ModelInfo{Name: model}, nil
	}
	m, err := g.client.Models.Get(context.Background(), model, nil)
	if err != nil {
		// minimal info so callers aren't blocked
		return adapter.ModelInfo{Name: model}, nil
	}
	return adapter.ModelInfo{
		Name:        m.Name,
		Description: m.Description,
		MaxTokens:   int(m.InputTokenLimit),
		Supports:    m.SupportedActions,
	}, nil
}

func (g *GeminiAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	if g.client == nil {
		return 0, domain.ErrMissingAPIKey
	}
	resp, err := g.client.Models.CountTokens(ctx, modelOrDefault(model, g.defaultModel), toGenAIHistory(messages), nil)
	if err != nil {
		return 0, err
	}
	return int(resp.TotalTokens), nil
}

func (g *GeminiAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := g.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (g *GeminiAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	model = modelOrDefault(model, g.defaultModel)
	if g.client == nil {
		return "", adapter.Usage{}, &domain.CompletionError{Provider: providerGemini, Kind: domain.CompletionAuth, Err: domain.ErrMissingAPIKey}
	}
	if len(messages) == 0 {
		return "", adapter.Usage{}, &domain.CompletionError{Provider: providerGemini, Kind: domain.CompletionBadRequest, Err: errors.New("no messages")}
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, model, toGenAIHistory(messages), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(g.temperature),
		ResponseMIMEType: "application/json",
	})
	latency := int(time.Since(start).Milliseconds())
	if err != nil {
		ce := geminiError(err)
		metrics.ObserveChatUsage(providerGemini, model, 0, 0, 0, latency, false)
		metrics.IncAICallError(providerGemini, string(ce.Kind))
		return "", adapter.Usage{}, ce
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		var sb strings.Builder
		for _, p := range resp.Candidates[0].Content.Parts {
			if p != nil {
				sb.WriteString(p.Text)
			}
		}
		text = sb.String()
	}
	u := adapter.Usage{}
	if resp != nil && resp.UsageMetadata != nil {
		u.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	metrics.ObserveChatUsage(providerGemini, model, u.PromptTokens, u.CompletionTokens, u.TotalTokens, latency, text != "")
	if text == "" {
		metrics.IncAICallError(providerGemini, string(domain.CompletionEmpty))
		return "", u, &domain.CompletionError{Provider: providerGemini, Kind: domain.CompletionEmpty, Err: errors.New("no candidate content")}
	}
	return text, u, nil
}

func geminiError(err error) *domain.CompletionError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.CompletionError{
			Provider:   providerGemini,
			Kind:       domain.CompletionKindForStatus(apiErr.Code),
			StatusCode: apiErr.Code,
			Err:        err,
		}
	}
	return &domain.CompletionError{Provider: providerGemini, Kind: domain.CompletionUnavailable, Err: err}
}

func toGenAIHistory(msgs []adapter.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		if r := strings.ToLower(m.Role); r == "assistant" || r == "model" {
			role = genai.RoleModel
		}
		// no separate system role in history; system text goes in as a user turn
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}
