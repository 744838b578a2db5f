package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
)

// DecodeInvoiceFields turns a collaborator's JSON answer into InvoiceFields:
// sanitize, validate against the schema, then unmarshal. The returned bytes
// are the sanitized document.
func DecodeInvoiceFields(raw []byte, logger *slog.Logger) (InvoiceFields, []byte, error) {
	cleaned, _, err := NormalizeAndSanitizeJSON(stripCodeFence(raw), logger)
	if err != nil {
		return InvoiceFields{}, raw, err
	}
	if err := ValidateInvoiceJSON(cleaned); err != nil {
		return InvoiceFields{}, cleaned, fmt.Errorf("schema validation failed: %w", err)
	}
	var out InvoiceFields
	if err := json.Unmarshal(cleaned, &out); err != nil {
		return InvoiceFields{}, cleaned, fmt.Errorf("unmarshal fields: %w", err)
	}
	return out, cleaned, nil
}

// stripCodeFence removes a ```json ... ``` wrapper some models add even in
// JSON mode.
func stripCodeFence(raw []byte) []byte {
	b := bytes.TrimSpace(raw)
	if !bytes.HasPrefix(b, []byte("```")) {
		return b
	}
	b = b[3:]
	if nl := bytes.IndexByte(b, '\n'); nl >= 0 {
		b = b[nl+1:]
	}
	b = bytes.TrimSuffix(bytes.TrimSpace(b), []byte("```"))
	return bytes.TrimSpace(b)
}
