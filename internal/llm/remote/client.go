// Package remote calls a self-hosted extraction service over plain HTTP JSON.
package remote

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
)

// Config for the remote extraction service.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client implements llm.InvoiceExtractor against POST {BaseURL}/extract.
type Client struct {
	endpoint string
	headers  map[string]string
	http     *http.Client
	logger   *slog.Logger
}

type extractBody struct {
	Text     string `json:"text"`
	Filename string `json:"filename,omitempty"`
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/extract",
		headers:  headers,
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   logger,
	}
}

func (c *Client) ExtractInvoice(ctx context.Context, req llm.ExtractRequest) (llm.InvoiceFields, []byte, error) {
	raw, status, err := llm.SendJSON(ctx, c.http, c.endpoint, extractBody{Text: req.Text, Filename: req.FilenameHint}, c.headers, c.logger)
	if err != nil {
		return llm.InvoiceFields{}, raw, fmt.Errorf("remote extract (status %d): %w", status, err)
	}
	out, cleaned, err := llm.DecodeInvoiceFields(raw, c.logger)
	if err != nil {
		return llm.InvoiceFields{}, cleaned, fmt.Errorf("remote extract: %w", err)
	}
	c.logger.Info("llm.remote.ok", "items", len(out.Items), "endpoint", c.endpoint)
	return out, cleaned, nil
}
