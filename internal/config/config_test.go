package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoice-qa-review/internal/config"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultServiceTradeBase, cfg.ServiceTrade.BaseURL)
	assert.Equal(t, "gpt-4o", cfg.AI.Model)
	assert.InDelta(t, 0.2, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, 1, cfg.AI.ConcurrentLimit)
	assert.Equal(t, "job", cfg.Review.DefaultMode)
	assert.Equal(t, config.DefaultJobReference, cfg.Review.JobReference)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Zero(t, cfg.HTTP.RequestTimeout)
	assert.Zero(t, cfg.ServiceTrade.Timeout)
}

func TestLoadConfig_SecretsComeFromEnvironment(t *testing.T) {
	t.Setenv("SERVICETRADE_USERNAME", "qa_user")
	t.Setenv("SERVICETRADE_PASSWORD", "pw")
	t.Setenv("OPENAI_API_KEY", "sk-env")

	p := writeYAML(t, `
servicetrade:
  base_url: https://sandbox.servicetrade.com/api/
  timeout: 30s
ai:
  temperature: 0
review:
  default_mode: Invoice
`)
	cfg, err := config.LoadConfig(p, true)
	require.NoError(t, err)

	assert.Equal(t, "qa_user", cfg.ServiceTrade.Username)
	assert.Equal(t, "pw", cfg.ServiceTrade.Password)
	assert.Equal(t, "sk-env", cfg.AI.OpenAIKey)
	assert.Equal(t, "https://sandbox.servicetrade.com/api", cfg.ServiceTrade.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.ServiceTrade.Timeout)
	assert.Zero(t, cfg.AI.Temperature, "explicit 0 must survive defaults")
	assert.Equal(t, "invoice", cfg.Review.DefaultMode)
	assert.True(t, cfg.Runtime.Dev)
}

func TestLoadConfig_Validation(t *testing.T) {
	cases := map[string]string{
		"mode":        "review:\n  default_mode: quote\n",
		"provider":    "ai:\n  provider: bard\n",
		"temperature": "ai:\n  temperature: 3\n",
		"jmespath":    "review:\n  job_reference: \"job.[\"\n",
		"bot token":   "bot:\n  enabled: true\n",
		"yaml":        "ai: [",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("TELEGRAM_BOT_TOKEN", "")
			_, err := config.LoadConfig(writeYAML(t, body), false)
			assert.Error(t, err)
		})
	}
}
