package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"invoice-qa-review/internal/domain"
	"invoice-qa-review/internal/domain/ports/adapter"
	"invoice-qa-review/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.AIServiceAdapter = (*OpenAIAdapter)(nil)

const providerOpenAI = "openai"

// OpenAIAdapter implements adapter.AIServiceAdapter with the official SDK.
// SDK retries are disabled; one Chat is one request.
type OpenAIAdapter struct {
	apiKey      string
	model       string
	temperature float64
	client      openai.Client

	encMu sync.Mutex
	encs  map[string]*tiktoken.Tiktoken
}

// OpenAIOptions configures NewOpenAIAdapter. BaseURL and HTTPClient are optional.
type OpenAIOptions struct {
	APIKey      string
	Model       string
	Temperature float64
	BaseURL     string
	HTTPClient  *http.Client
}

// NewOpenAIAdapter never fails on a missing key: the first Chat reports it.
func NewOpenAIAdapter(o OpenAIOptions) *OpenAIAdapter {
	if o.Model == "" {
		o.Model = "gpt-4o"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(o.APIKey),
		option.WithMaxRetries(0),
	}
	if o.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(o.BaseURL, "/")+"/"))
	}
	if o.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(o.HTTPClient))
	}
	return &OpenAIAdapter{
		apiKey:      o.APIKey,
		model:       o.Model,
		temperature: o.Temperature,
		client:      openai.NewClient(opts...),
		encs:        map[string]*tiktoken.Tiktoken{},
	}
}

func (o *OpenAIAdapter) ListModels(ctx context.Context) ([]string, error) {
	return []string{o.model}, nil
}

func (o *OpenAIAdapter) GetModelInfo(model string) (adapter.ModelInfo, error) {
	if model == "" {
		model = o.model
	}
	return adapter.ModelInfo{
		Name:        model,
		Description: "OpenAI Chat Completions model",
		MaxTokens:   0,
		Supports:    []string{"text"},
	}, nil
}

// CountTokens counts locally with tiktoken; the per-message overhead follows
// the chat format (3 tokens per message, 3 for the reply primer).
func (o *OpenAIAdapter) CountTokens(ctx context.Context, model string, messages []adapter.Message) (int, error) {
	enc, err := o.encoding(modelOrDefault(model, o.model))
	if err != nil {
		return 0, err
	}
	n := 3
	for _, m := range messages {
		n += 3 + len(enc.Encode(m.Role, nil, nil)) + len(enc.Encode(m.Content, nil, nil))
	}
	return n, nil
}

func (o *OpenAIAdapter) encoding(model string) (*tiktoken.Tiktoken, error) {
	o.encMu.Lock()
	defer o.encMu.Unlock()
	if enc := o.encs[model]; enc != nil {
		return enc, nil
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		if enc, err = tiktoken.GetEncoding("cl100k_base"); err != nil {
			return nil, err
		}
	}
	o.encs[model] = enc
	return enc, nil
}

func (o *OpenAIAdapter) Chat(ctx context.Context, model string, messages []adapter.Message) (string, error) {
	reply, _, err := o.ChatWithUsage(ctx, model, messages)
	return reply, err
}

func (o *OpenAIAdapter) ChatWithUsage(ctx context.Context, model string, messages []adapter.Message) (string, adapter.Usage, error) {
	model = modelOrDefault(model, o.model)
	if o.apiKey == "" {
		return "", adapter.Usage{}, &domain.CompletionError{Provider: providerOpenAI, Kind: domain.CompletionAuth, Err: domain.ErrMissingAPIKey}
	}

	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(o.temperature),
	})
	latency := int(time.Since(start).Milliseconds())
	if err != nil {
		ce := openAIError(err)
		metrics.ObserveChatUsage(providerOpenAI, model, 0, 0, 0, latency, false)
		metrics.IncAICallError(providerOpenAI, string(ce.Kind))
		return "", adapter.Usage{}, ce
	}

	u := adapter.Usage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	metrics.ObserveChatUsage(providerOpenAI, model, u.PromptTokens, u.CompletionTokens, u.TotalTokens, latency, true)

	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, u, nil
		}
	}
	metrics.IncAICallError(providerOpenAI, string(domain.CompletionEmpty))
	return "", u, &domain.CompletionError{Provider: providerOpenAI, Kind: domain.CompletionEmpty, Err: errors.New("no choice content")}
}

func toOpenAIMessages(msgs []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func openAIError(err error) *domain.CompletionError {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &domain.CompletionError{
			Provider:   providerOpenAI,
			Kind:       domain.CompletionKindForStatus(apiErr.StatusCode),
			StatusCode: apiErr.StatusCode,
			Err:        err,
		}
	}
	return &domain.CompletionError{Provider: providerOpenAI, Kind: domain.CompletionUnavailable, Err: err}
}
