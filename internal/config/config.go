// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/jmespath-community/go-jmespath"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
	File     string `yaml:"file"`     // optional; TUI logs here instead of stdout
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"` // 0 = no deadline
}

type BotConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Token        string  `yaml:"token" env:"TELEGRAM_BOT_TOKEN"`
	AllowedChats []int64 `yaml:"allowed_chats"`
}

// ServiceTradeConfig holds the record API endpoint and its Basic credentials.
// Credentials come from the environment; they are constant for the process.
type ServiceTradeConfig struct {
	BaseURL  string        `yaml:"base_url"`
	Username string        `yaml:"-" env:"SERVICETRADE_USERNAME"`
	Password string        `yaml:"-" env:"SERVICETRADE_PASSWORD"`
	Timeout  time.Duration `yaml:"timeout"` // 0 keeps the http.Client default
}

type AIConfig struct {
	Provider        string  `yaml:"provider"` // openai|compat|gemini|multi|noop
	Model           string  `yaml:"model"`
	Temperature     float64 `yaml:"temperature"`
	OpenAIKey       string  `yaml:"-" env:"OPENAI_API_KEY"`
	GeminiKey       string  `yaml:"-" env:"GEMINI_API_KEY"`
	GeminiURL       string  `yaml:"gemini_url"`
	CompatKey       string  `yaml:"-" env:"COMPAT_API_KEY"`
	CompatBaseURL   string  `yaml:"compat_base_url"`
	ConcurrentLimit int     `yaml:"concurrent_limit"` // max in-flight completions
}

type ReviewConfig struct {
	DefaultMode  string `yaml:"default_mode"`  // job|invoice
	JobReference string `yaml:"job_reference"` // JMESPath into the invoice document
}

type Config struct {
	Log          LogConfig          `yaml:"log"`
	HTTP         HTTPConfig         `yaml:"http"`
	Bot          BotConfig          `yaml:"bot"`
	ServiceTrade ServiceTradeConfig `yaml:"servicetrade"`
	AI           AIConfig           `yaml:"ai"`
	Review       ReviewConfig       `yaml:"review"`

	Runtime RuntimeConfig `yaml:"-"`
}

const (
	DefaultServiceTradeBase = "https://app.servicetrade.com/api"
	DefaultModel            = "gpt-4o"
	DefaultTemperature      = 0.2
	DefaultJobReference     = "job.id || data.job.id"
)

// LoadConfig reads the YAML file at path (a missing file yields defaults),
// then overlays secrets from the environment. A .env file in the working
// directory is loaded first when present.
func LoadConfig(path string, dev bool) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg Config
	cfg.AI.Temperature = -1 // sentinel: distinguishes "unset" from an explicit 0
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.RequestTimeout < 0 {
		c.HTTP.RequestTimeout = 0
	}
	if c.ServiceTrade.BaseURL == "" {
		c.ServiceTrade.BaseURL = DefaultServiceTradeBase
	}
	c.ServiceTrade.BaseURL = strings.TrimRight(c.ServiceTrade.BaseURL, "/")

	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		c.AI.Provider = "openai"
	}
	if c.AI.Model == "" {
		c.AI.Model = DefaultModel
	}
	if c.AI.Temperature < 0 {
		c.AI.Temperature = DefaultTemperature
	}
	if c.AI.ConcurrentLimit <= 0 {
		c.AI.ConcurrentLimit = 1
	}

	c.Review.DefaultMode = strings.ToLower(strings.TrimSpace(c.Review.DefaultMode))
	if c.Review.DefaultMode == "" {
		c.Review.DefaultMode = "job"
	}
	if strings.TrimSpace(c.Review.JobReference) == "" {
		c.Review.JobReference = DefaultJobReference
	}
}

// Validate checks values that cannot be defaulted. Credentials are not
// required here: a missing key only fails when the remote call is attempted.
func (c *Config) Validate() error {
	switch c.Review.DefaultMode {
	case "job", "invoice":
	default:
		return fmt.Errorf("review.default_mode must be job or invoice, got %q", c.Review.DefaultMode)
	}
	switch c.AI.Provider {
	case "openai", "compat", "gemini", "multi", "noop":
	default:
		return fmt.Errorf("ai.provider %q is not supported", c.AI.Provider)
	}
	if c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be within [0,2], got %v", c.AI.Temperature)
	}
	if _, err := jmespath.Compile(c.Review.JobReference); err != nil {
		return fmt.Errorf("review.job_reference: %w", err)
	}
	if c.Bot.Enabled && c.Bot.Token == "" {
		return errors.New("bot.token (TELEGRAM_BOT_TOKEN) is required when bot.enabled is true")
	}
	return nil
}
