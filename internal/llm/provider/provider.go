// Package provider builds the configured AI collaborator.
package provider

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm/openai"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm/remote"
)

// New returns the collaborator named by cfg.Provider, or nil when AI
// extraction is disabled.
func New(cfg common.AIConfig, logger *slog.Logger) (llm.InvoiceExtractor, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger), nil
	case "remote":
		return remote.NewClient(remote.Config{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		}, logger), nil
	}
	return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown AI provider %q", cfg.Provider), common.ErrInvalidInput)
}
