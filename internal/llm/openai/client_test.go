package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
)

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
}

func TestExtractInvoice(t *testing.T) {
	var gotReq map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(`{"items":[{"name":"Монитор","quantity":2,"price":15000,"total":30000}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, nil)
	out, _, err := c.ExtractInvoice(context.Background(), llm.ExtractRequest{Text: "Монитор 2 шт 15000"})
	if err != nil {
		t.Fatalf("ExtractInvoice() error = %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].Name != "Монитор" || out.Items[0].Total != 30000 {
		t.Errorf("ExtractInvoice() items = %+v", out.Items)
	}
	format, _ := gotReq["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Errorf("response_format = %v, want json_object", gotReq["response_format"])
	}
}

func TestExtractInvoiceErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
			},
		},
		{
			name: "content is not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(chatResponse("I could not find any items."))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()
			c := NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, nil)
			if _, _, err := c.ExtractInvoice(context.Background(), llm.ExtractRequest{Text: "x"}); err == nil {
				t.Error("ExtractInvoice() error = nil, want error")
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{"empty", Config{}, Config{APIKey: "sk-env", Model: DefaultModel, Timeout: defaultTimeout}},
		{"explicit", Config{APIKey: "k", Model: "m", Temperature: 0.3, Timeout: time.Second}, Config{APIKey: "k", Model: "m", Temperature: 0.3, Timeout: time.Second}},
		{"hot", Config{APIKey: "k", Temperature: 5}, Config{APIKey: "k", Model: DefaultModel, Temperature: 2, Timeout: defaultTimeout}},
		{"negative", Config{APIKey: "k", Temperature: -1}, Config{APIKey: "k", Model: DefaultModel, Timeout: defaultTimeout}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.withDefaults(); got != tt.want {
				t.Errorf("withDefaults() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
