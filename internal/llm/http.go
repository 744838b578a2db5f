package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

const (
	maxResponseBytes = 4 << 20
	errorSnippetLen  = 256
	defaultTimeout   = 45 * time.Second
)

// StatusError is returned by SendJSON for non-2xx responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("collaborator answered %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether repeating the call later may succeed.
func (e *StatusError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// SendJSON POSTs body as JSON and returns the raw response body with its
// status. The request ID from ctx travels as X-Request-ID.
func SendJSON(ctx context.Context, client *http.Client, url string, body any, headers map[string]string, logger *slog.Logger) ([]byte, int, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	ctx, reqID := common.EnsureRequestID(ctx)
	start := time.Now()

	req, size, err := newJSONRequest(ctx, url, body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("X-Request-ID", reqID)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	logger.Debug("llm.http.request", "req_id", reqID, "url", url, "content_length", size)

	resp, err := client.Do(req)
	if err != nil {
		logger.Warn("llm.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, fmt.Errorf("send request: %w", err)
	}
	raw, err := readBody(resp)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	logger.Debug("llm.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return raw, resp.StatusCode, &StatusError{StatusCode: resp.StatusCode, Body: snippet(raw)}
	}
	return raw, resp.StatusCode, nil
}

func newJSONRequest(ctx context.Context, url string, body any) (*http.Request, int, error) {
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("encode json: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, len(bs), nil
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return raw, nil
}

// snippet cuts raw to errorSnippetLen bytes without splitting a rune.
func snippet(raw []byte) string {
	if len(raw) <= errorSnippetLen {
		return string(raw)
	}
	cut := errorSnippetLen
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return string(raw[:cut])
}
