// Package openai adapts the chat completions API to llm.InvoiceExtractor.
package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel   = goopenai.GPT4oMini
	defaultTimeout = 45 * time.Second
	maxTemperature = 2
)

type Config struct {
	APIKey      string // OPENAI_API_KEY when empty
	BaseURL     string // SDK default when empty
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// withDefaults fills unset fields and clamps Temperature into [0, 2].
func (c Config) withDefaults() Config {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	c.Temperature = min(max(c.Temperature, 0), maxTemperature)
	return c
}

type Client struct {
	cfg    Config
	api    *goopenai.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	sdk := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		sdk.BaseURL = cfg.BaseURL
	}
	sdk.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Client{cfg: cfg, api: goopenai.NewClientWithConfig(sdk), logger: logger}
}
