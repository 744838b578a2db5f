package llm

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

func ref[T any](v T) *T { return &v }

func TestDecodeInvoiceFields(t *testing.T) {
	raw := []byte("```json\n" + `{
		"line_items": [
			{"name": " Garlic Crusher ", "qty": "500", "unit_price": "2,50", "total": 1250, "code": "SKU001", "note": "x"},
			{"name": "", "quantity": 1, "price": 3},
			{"name": "Peeler", "quantity": 1.5, "price": 3},
			{"name": "Grater", "quantity": 2, "price": null}
		],
		"invoice": {"invoice_number": "INV-7", "total": "1 250,00", "currency": "rmb", "vat": 20, "seller": null},
		"bank": {"swift": "bkch cnbj 92b", "hasRequisites": true, "accountNumber": "397475795838", "iban": "x"},
		"confidence": 0.9
	}` + "\n```")

	got, _, err := DecodeInvoiceFields(raw, nil)
	if err != nil {
		t.Fatalf("DecodeInvoiceFields() error = %v", err)
	}
	want := InvoiceFields{
		Items: []ItemFields{
			{Name: "Garlic Crusher", Quantity: 500, Price: 2.5, Total: 1250, Code: "SKU001"},
		},
		InvoiceInfo: &entity.InvoiceInfo{
			Number:      ref("INV-7"),
			TotalAmount: ref(1250.0),
			Currency:    ref("RMB"),
			VAT:         ref("20.00"),
		},
		BankInfo: &entity.BankRequisites{
			Swift:         "BKCHCNBJ92B",
			AccountNumber: "397475795838",
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DecodeInvoiceFields() mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeInvoiceFieldsErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "sorry, I cannot help"},
		{name: "swift fails schema", raw: `{"items": [], "bankInfo": {"swift": "BADSWIFT1"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeInvoiceFields([]byte(tt.raw), nil); err == nil {
				t.Error("DecodeInvoiceFields() error = nil, want error")
			}
		})
	}
}

func TestDecodeInvoiceFieldsMissingItems(t *testing.T) {
	got, _, err := DecodeInvoiceFields([]byte(`{"invoiceInfo": {"number": "15"}}`), nil)
	if err != nil {
		t.Fatalf("DecodeInvoiceFields() error = %v", err)
	}
	if len(got.Items) != 0 {
		t.Errorf("Items = %v, want empty", got.Items)
	}
	if got.InvoiceInfo == nil || *got.InvoiceInfo.Number != "15" {
		t.Errorf("InvoiceInfo = %+v, want number 15", got.InvoiceInfo)
	}
}

func TestBuildUserPromptTruncates(t *testing.T) {
	long := make([]rune, maxPromptRunes+50)
	for i := range long {
		long[i] = 'я'
	}
	p := BuildUserPrompt(ExtractRequest{Text: string(long), FilenameHint: "inv.pdf"})
	if got := len([]rune(p)); got > maxPromptRunes+100 {
		t.Errorf("prompt length = %d runes, want at most %d", got, maxPromptRunes+100)
	}
}

func TestInvoiceSchemaCompiles(t *testing.T) {
	if _, err := invoiceSchema(); err != nil {
		t.Fatalf("invoice schema: %v", err)
	}
}
