package llm

import (
	"encoding/json"
	"strings"
)

// maxPromptRunes caps the document text sent to the collaborator.
const maxPromptRunes = 8000

// BuildSystemPrompt describes the expected result shape and the field rules
// the heuristic pipelines also follow.
func BuildSystemPrompt() string {
	parts := []string{
		"You extract purchase invoices. Return ONLY JSON that matches the provided JSON Schema.",
		"'items' lists every purchased position: name, whole-number quantity, unit price, line total.",
		"Copy supplier item codes into 'code' and units (pcs, шт, kg, sets) into 'unit' when printed.",
		"Never invent items from bank details, totals, taxes, addresses or phone numbers.",
		"Amounts are plain numbers with a dot as decimal separator and no thousands separators.",
		"'invoiceInfo.currency' is a 3-letter code (RUB, USD, EUR, RMB for Chinese yuan).",
		"'invoiceInfo.vat' is either the tax amount with two decimals or a percentage like '20%'.",
		"'bankInfo' holds the payment requisites: bank name, account number, SWIFT, recipient name and address, transfer currency.",
		"Keep account numbers as printed digits without spaces.",
		"Never output null. If a field is not present, omit it. If there are no items, return an empty 'items' array.",
		"JSON Schema:\n" + mustJSON(BuildInvoiceJSONSchema()),
	}
	return strings.Join(parts, "\n")
}

// BuildUserPrompt packages the optional filename hint and the document text,
// truncated to maxPromptRunes.
func BuildUserPrompt(req ExtractRequest) string {
	var b strings.Builder
	if filename := strings.TrimSpace(req.FilenameHint); filename != "" {
		b.WriteString("Filename: ")
		b.WriteString(filename)
		b.WriteString("\n")
	}
	text := []rune(strings.TrimSpace(req.Text))
	b.WriteString("\nDocument text:\n")
	if len(text) > maxPromptRunes {
		b.WriteString(string(text[:maxPromptRunes]))
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(string(text))
	}
	return b.String()
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
