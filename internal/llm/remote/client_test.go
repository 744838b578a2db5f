package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
)

func TestExtractInvoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/extract" {
			http.NotFound(w, r)
			return
		}
		var body extractBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"name":"Garlic Crusher","quantity":"500","price":"2.50","code":"SKU001"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/"}, nil)
	out, _, err := c.ExtractInvoice(context.Background(), llm.ExtractRequest{Text: "Garlic Crusher 500 2.50"})
	if err != nil {
		t.Fatalf("ExtractInvoice() error = %v", err)
	}
	want := []llm.ItemFields{{Name: "Garlic Crusher", Quantity: 500, Price: 2.5, Code: "SKU001"}}
	if diff := cmp.Diff(want, out.Items); diff != "" {
		t.Errorf("ExtractInvoice() items mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractInvoiceNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, nil)
	if _, _, err := c.ExtractInvoice(context.Background(), llm.ExtractRequest{Text: "x"}); err == nil {
		t.Error("ExtractInvoice() error = nil, want error")
	}
}
