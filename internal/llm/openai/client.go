package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
)

// ExtractInvoice implements llm.InvoiceExtractor using a JSON-mode chat completion.
func (c *Client) ExtractInvoice(ctx context.Context, req llm.ExtractRequest) (llm.InvoiceFields, []byte, error) {
	ctx, rid := common.EnsureRequestID(ctx)
	start := time.Now()

	c.logger.Info("llm.openai.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.Text),
	)

	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: c.cfg.Temperature,
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: llm.BuildSystemPrompt()},
			{Role: goopenai.ChatMessageRoleUser, Content: llm.BuildUserPrompt(req)},
		},
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			c.logger.Warn("llm.openai.api_error",
				"req_id", rid, "status", apiErr.HTTPStatusCode, "error", apiErr.Message,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		} else {
			c.logger.Warn("llm.openai.http_error",
				"req_id", rid, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
		}
		return llm.InvoiceFields{}, nil, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		c.logger.Warn("llm.openai.no_choices", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.InvoiceFields{}, nil, fmt.Errorf("no choices in openai response")
	}

	content := []byte(strings.TrimSpace(resp.Choices[0].Message.Content))
	out, cleaned, err := llm.DecodeInvoiceFields(content, c.logger)
	if err != nil {
		c.logger.Warn("llm.openai.decode_failed",
			"req_id", rid, "error", err, "content_bytes", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.InvoiceFields{}, cleaned, err
	}

	c.logger.Info("llm.openai.ok",
		"req_id", rid,
		"items", len(out.Items),
		"has_invoice_info", out.InvoiceInfo != nil,
		"has_bank_info", out.BankInfo != nil,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, cleaned, nil
}
