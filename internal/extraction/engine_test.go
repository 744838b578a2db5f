package extraction

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
)

type fakeAI struct {
	fields llm.InvoiceFields
	err    error
	panics bool
	block  bool
	calls  int
}

func (f *fakeAI) ExtractInvoice(ctx context.Context, _ llm.ExtractRequest) (llm.InvoiceFields, []byte, error) {
	f.calls++
	if f.panics {
		panic("collaborator exploded")
	}
	if f.block {
		<-ctx.Done()
		return llm.InvoiceFields{}, nil, ctx.Err()
	}
	return f.fields, nil, f.err
}

const longInvoice = "Счет на оплату № 15 от 15.01.2024\n" +
	"Поставщик: ООО \"Ромашка\"\n" +
	"Покупатель: ООО \"Вектор\"\n" +
	"Монитор | 2 | 15000.00 | 30000.00\n" +
	"Итого: 30000 руб"

var monitor = entity.LineItem{Name: "Монитор", Quantity: 2, Price: 15000, Total: 30000, Code: "ITEM-1", Unit: "pcs"}

func TestExtractScenarios(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		wantRoute entity.Route
		wantItems []entity.LineItem
		wantBank  *entity.BankRequisites
	}{
		{
			name:      "freeform pipe items",
			text:      "Монитор | 2 | 15000.00 | 30000.00\nИтого: 30000 руб",
			wantRoute: entity.RouteFreeform,
			wantItems: []entity.LineItem{monitor},
		},
		{
			name:      "multiplier grammar",
			text:      "Кабель x 5 = 2500.00",
			wantRoute: entity.RouteFreeform,
			wantItems: []entity.LineItem{{Name: "Кабель", Quantity: 5, Price: 500, Total: 2500, Code: "ITEM-1", Unit: "pcs"}},
		},
		{
			name:      "bank requisites",
			text:      "SWIFT CODE: BKCHCNBJ92B\nUSD A/C NO.: 397475795838",
			wantRoute: entity.RouteFreeform,
			wantItems: []entity.LineItem{},
			wantBank: &entity.BankRequisites{
				Swift:            "BKCHCNBJ92B",
				AccountNumber:    "397475795838",
				TransferCurrency: "USD",
			},
		},
		{
			name: "spreadsheet six column row",
			text: "=== SHEET: Invoice ===\n" +
				"ITEM NUMBER | ITEM CODE | Product description | QTY | Price,RMB | Total,RMB\n" +
				"1 | SKU001 | Garlic Crusher | 500 | 2.50 | 1250.00\n" +
				"Payment terms: T/T",
			wantRoute: entity.RouteTabular,
			wantItems: []entity.LineItem{{Name: "Garlic Crusher", Quantity: 500, Price: 2.5, Total: 1250, Code: "SKU001", Unit: "pcs"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewEngine(nil, Config{}, nil).Extract(context.Background(), tt.text)
			if got.Route != tt.wantRoute {
				t.Errorf("Route = %q, want %q", got.Route, tt.wantRoute)
			}
			if diff := cmp.Diff(tt.wantItems, got.Items); diff != "" {
				t.Errorf("Items mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantBank, got.BankInfo); diff != "" {
				t.Errorf("BankInfo mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractAddressContamination(t *testing.T) {
	text := "BENEFICIARY NAME: ZHEJIANG HOMEWARE CO., LTD\n" +
		"BENEFICIARY'S ADDRESS: No. 88 Jiangnan Road,\n" +
		"Binjiang District, Hangzhou\n" +
		"Carlic crusher | 2.50 | RMB\n" +
		"SWIFT CODE: BKCHCNBJ92B"
	got := NewEngine(nil, Config{}, nil).Extract(context.Background(), text)
	if got.BankInfo == nil {
		t.Fatal("BankInfo = nil")
	}
	if addr := got.BankInfo.RecipientAddress; strings.Contains(strings.ToLower(addr), "crusher") {
		t.Errorf("RecipientAddress = %q, product line not stripped", addr)
	}
}

func TestExtractAIRoute(t *testing.T) {
	ai := &fakeAI{fields: llm.InvoiceFields{
		Items: []llm.ItemFields{
			{Name: "Monitor", Quantity: 2, Price: 100},
			{Name: "Cable", Quantity: 1, Price: 5, Code: "C-1", Unit: "m"},
			{Name: "Cable long", Quantity: 1, Price: 7, Total: 7, Code: "C-1"},
		},
		BankInfo: &entity.BankRequisites{BankName: "BANK OF CHINA"},
	}}
	got := NewEngine(ai, Config{}, nil).Extract(context.Background(), longInvoice)

	want := []entity.LineItem{
		{Name: "Monitor", Quantity: 2, Price: 100, Total: 200, Code: "ITEM-1", Unit: "pcs"},
		{Name: "Cable", Quantity: 1, Price: 5, Total: 5, Code: "C-1", Unit: "m"},
		{Name: "Cable long", Quantity: 1, Price: 7, Total: 7, Code: "ITEM-2", Unit: "pcs"},
	}
	if got.Route != entity.RouteAI {
		t.Errorf("Route = %q, want ai", got.Route)
	}
	if diff := cmp.Diff(want, got.Items); diff != "" {
		t.Errorf("Items mismatch (-want +got):\n%s", diff)
	}
	if got.BankInfo != nil {
		t.Errorf("BankInfo = %+v, want nil for requisites without identifying fields", got.BankInfo)
	}
}

func TestAdaptAICodesSkipSourceCodes(t *testing.T) {
	f := llm.InvoiceFields{Items: []llm.ItemFields{
		{Name: "Garlic press", Quantity: 1, Price: 3, Code: "ITEM-1"},
		{Name: "Peeler", Quantity: 1, Price: 2},
		{Name: "Grater", Quantity: 1, Price: 4, Code: "ITEM-3"},
		{Name: "Whisk", Quantity: 1, Price: 1},
	}}
	got := adaptAI(f, &entity.ItemCodes{})

	var codes []string
	for _, it := range got.Items {
		codes = append(codes, it.Code)
	}
	want := []string{"ITEM-1", "ITEM-2", "ITEM-3", "ITEM-4"}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Errorf("adaptAI() codes mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractAIFallback(t *testing.T) {
	tests := []struct {
		name string
		ai   *fakeAI
	}{
		{name: "empty item list", ai: &fakeAI{}},
		{name: "collaborator error", ai: &fakeAI{err: errors.New("503 service unavailable")}},
		{name: "collaborator panic", ai: &fakeAI{panics: true}},
		{name: "collaborator timeout", ai: &fakeAI{block: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(tt.ai, Config{AITimeout: 20 * time.Millisecond}, nil)
			got := e.Extract(context.Background(), longInvoice)
			if tt.ai.calls != 1 {
				t.Errorf("AI calls = %d, want 1", tt.ai.calls)
			}
			if got.Route != entity.RouteFreeform {
				t.Errorf("Route = %q, want freeform", got.Route)
			}
			if diff := cmp.Diff([]entity.LineItem{monitor}, got.Items); diff != "" {
				t.Errorf("Items mismatch (-want +got):\n%s", diff)
			}
			if got.InvoiceInfo.Number == nil || *got.InvoiceInfo.Number != "15" {
				t.Errorf("InvoiceInfo.Number = %v, want 15", got.InvoiceInfo.Number)
			}
		})
	}
}

func TestExtractShortTextSkipsAI(t *testing.T) {
	ai := &fakeAI{}
	NewEngine(ai, Config{}, nil).Extract(context.Background(), "Монитор | 2 | 15000.00 | 30000.00")
	if ai.calls != 0 {
		t.Errorf("AI calls = %d, want 0 below the length threshold", ai.calls)
	}
}

func TestExtractIdempotent(t *testing.T) {
	e := NewEngine(nil, Config{}, nil)
	first := e.Extract(context.Background(), longInvoice)
	second := e.Extract(context.Background(), longInvoice)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
}

func TestExtractDocument(t *testing.T) {
	e := NewEngine(nil, Config{}, nil)
	tests := []struct {
		docType string
		wantErr error
	}{
		{docType: ""},
		{docType: "invoice"},
		{docType: "company_card", wantErr: common.ErrUnsupportedDocumentType},
		{docType: "passport", wantErr: common.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.docType, func(t *testing.T) {
			_, err := e.ExtractDocument(context.Background(), longInvoice, tt.docType)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("ExtractDocument() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ExtractDocument() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
