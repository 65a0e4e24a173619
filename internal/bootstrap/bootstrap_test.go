package bootstrap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-qa-review/internal/bootstrap"
	"invoice-qa-review/internal/config"
	"invoice-qa-review/internal/domain/model"
)

func TestBuild_BlankInputNeverLeavesProcess(t *testing.T) {
	cfg := &config.Config{
		ServiceTrade: config.ServiceTradeConfig{BaseURL: "http://127.0.0.1:1"},
		AI:           config.AIConfig{Provider: "noop", ConcurrentLimit: 1},
		Review:       config.ReviewConfig{DefaultMode: "invoice", JobReference: config.DefaultJobReference},
	}
	svc, err := bootstrap.Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ModeInvoice, svc.DefaultMode)

	v := svc.Facade.HandleReview(context.Background(), "  ", svc.DefaultMode)
	assert.Equal(t, model.ViewWarning, v.Status)
}

func TestBuild_RejectsBadMode(t *testing.T) {
	cfg := &config.Config{
		AI:     config.AIConfig{Provider: "noop"},
		Review: config.ReviewConfig{DefaultMode: "quote"},
	}
	_, err := bootstrap.Build(context.Background(), cfg, nil)
	assert.Error(t, err)
}
