// Package bootstrap wires config into the review pipeline shared by every binary.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"invoice-qa-review/internal/application"
	"invoice-qa-review/internal/config"
	"invoice-qa-review/internal/domain/model"
	aiAdapters "invoice-qa-review/internal/infra/adapters/ai"
	"invoice-qa-review/internal/infra/adapters/servicetrade"
	"invoice-qa-review/internal/infra/logging"
	"invoice-qa-review/internal/usecase"
)

// Services is the assembled pipeline.
type Services struct {
	Facade      *application.ReviewFacade
	ReviewUC    usecase.ReviewUseCase
	DefaultMode model.ResolveMode
}

func Build(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*Services, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	mode, err := model.ParseResolveMode(cfg.Review.DefaultMode)
	if err != nil {
		return nil, err
	}

	if cfg.ServiceTrade.Username == "" || cfg.ServiceTrade.Password == "" {
		logger.Warn().Msg("SERVICETRADE_USERNAME/SERVICETRADE_PASSWORD not set; record API calls will be rejected")
	}
	source := servicetrade.NewClient(cfg.ServiceTrade, nil, logger)
	logger.Info().
		Str("base_url", cfg.ServiceTrade.BaseURL).
		Str("user", logging.Redact(cfg.ServiceTrade.Username, cfg.Runtime.Dev)).
		Msg("record API configured")

	resolver, err := usecase.NewRecordResolver(source, cfg.Review.JobReference, logger)
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}

	ai, err := aiAdapters.NewFromConfig(ctx, cfg.AI, logger)
	if err != nil {
		return nil, err
	}

	reviewUC := usecase.NewReviewUseCase(resolver, ai, usecase.ReviewOptions{
		Model:    cfg.AI.Model,
		Provider: cfg.AI.Provider,
	}, logger)

	return &Services{
		Facade:      application.NewReviewFacade(reviewUC, logger),
		ReviewUC:    reviewUC,
		DefaultMode: mode,
	}, nil
}
