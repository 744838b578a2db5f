package freeform

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

func ref[T any](v T) *T { return &v }

func TestExtractMetadata(t *testing.T) {
	tests := []struct {
		name string
		text string
		want entity.InvoiceInfo
	}{
		{
			name: "russian invoice",
			text: "Счет на оплату № 15 от 15.01.2024\n" +
				"Поставщик: ООО \"Ромашка\"\n" +
				"Покупатель: ООО \"Вектор\"\n" +
				"Итого: 30000 руб\n" +
				"В том числе НДС: 5000.00 руб.",
			want: entity.InvoiceInfo{
				Number:      ref("15"),
				Date:        ref("15.01.2024"),
				TotalAmount: ref(30000.0),
				Currency:    ref("RUB"),
				VAT:         ref("5000.00"),
				Seller:      ref("ООО \"Ромашка\""),
				Buyer:       ref("ООО \"Вектор\""),
			},
		},
		{
			name: "english invoice",
			text: "Invoice No: INV-2024-007\nDate: 2024-03-05\nSeller: Acme Trading Ltd\nBuyer: Globex LLC\nTotal: 1,250.00 USD\nVAT 20%",
			want: entity.InvoiceInfo{
				Number:      ref("INV-2024-007"),
				Date:        ref("2024-03-05"),
				TotalAmount: ref(1250.0),
				Currency:    ref("USD"),
				VAT:         ref("20%"),
				Seller:      ref("Acme Trading Ltd"),
				Buyer:       ref("Globex LLC"),
			},
		},
		{
			name: "organization prefix followed by role",
			text: "ООО \"Север\" (Поставщик)\nАО «Юг» - Покупатель",
			want: entity.InvoiceInfo{
				Seller: ref("ООО \"Север\""),
				Buyer:  ref("АО «Юг»"),
			},
		},
		{
			name: "keyword trailing total and secondary currency",
			text: "2 500,50 € итого\nTotal: 3000 $",
			want: entity.InvoiceInfo{
				TotalAmount:                    ref(3000.0),
				Currency:                       ref("USD"),
				TotalAmountInSecondaryCurrency: ref(2500.5),
			},
		},
		{
			name: "number without digits is rejected",
			text: "Invoice Date: 01/02/2024\nНомер: A-17",
			want: entity.InvoiceInfo{
				Number: ref("A-17"),
				Date:   ref("01/02/2024"),
			},
		},
		{
			name: "nothing found",
			text: "Hello world",
			want: entity.InvoiceInfo{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractMetadata(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ExtractMetadata() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMetadataIgnoresBankAccountAsNumber(t *testing.T) {
	text := "Расчетный счет 40702810900000012345\nInvoice # 77"
	got := ExtractMetadata(text)
	if got.Number == nil || *got.Number != "77" {
		t.Errorf("Number = %v, want 77", got.Number)
	}
}
