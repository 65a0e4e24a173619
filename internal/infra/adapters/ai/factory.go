package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"invoice-qa-review/internal/config"
	"invoice-qa-review/internal/domain/ports/adapter"
	"invoice-qa-review/internal/infra/logging"
)

// NewFromConfig builds the adapter named by cfg.Provider and wraps it in the
// concurrency limiter. Keys are not checked here; a missing key fails the
// first chat with an auth error.
func NewFromConfig(ctx context.Context, cfg config.AIConfig, logger *zerolog.Logger) (adapter.AIServiceAdapter, error) {
	if logger == nil {
		logger = logging.Nop()
	}

	var (
		a   adapter.AIServiceAdapter
		err error
	)
	switch cfg.Provider {
	case providerOpenAI, "":
		a = newOpenAI(cfg)
	case providerCompat:
		a, err = NewCompatAdapter(cfg.CompatKey, cfg.Model, cfg.CompatBaseURL, cfg.Temperature, nil)
	case providerGemini:
		a, err = NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.Model, cfg.Temperature)
	case "multi":
		a, err = newMulti(ctx, cfg)
	case "noop":
		a = NewNoopAIAdapter(500 * time.Millisecond)
	default:
		return nil, fmt.Errorf("ai: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("ai %s adapter: %w", cfg.Provider, err)
	}

	logger.Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Float64("temperature", cfg.Temperature).
		Int("concurrent_limit", cfg.ConcurrentLimit).
		Msg("AI adapter ready")
	return NewLimitedAI(a, cfg.ConcurrentLimit), nil
}

func newOpenAI(cfg config.AIConfig) *OpenAIAdapter {
	return NewOpenAIAdapter(OpenAIOptions{APIKey: cfg.OpenAIKey, Model: cfg.Model, Temperature: cfg.Temperature})
}

// newMulti registers every provider that has a key; openai is always present
// so a keyless setup still reports the auth error.
func newMulti(ctx context.Context, cfg config.AIConfig) (*MultiAIAdapter, error) {
	byProvider := map[string]adapter.AIServiceAdapter{providerOpenAI: newOpenAI(cfg)}
	defaultProvider := providerOpenAI
	if cfg.GeminiKey != "" {
		g, err := NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, cfg.Model, cfg.Temperature)
		if err != nil {
			return nil, err
		}
		byProvider[providerGemini] = g
	}
	if cfg.CompatKey != "" && cfg.CompatBaseURL != "" {
		c, err := NewCompatAdapter(cfg.CompatKey, cfg.Model, cfg.CompatBaseURL, cfg.Temperature, nil)
		if err != nil {
			return nil, err
		}
		byProvider[providerCompat] = c
		if cfg.OpenAIKey == "" {
			defaultProvider = providerCompat
		}
	}
	return NewMultiAIAdapter(defaultProvider, byProvider, nil), nil
}
