package entity

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBankRequisitesMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   BankRequisites
		want string
	}{
		{
			name: "swift only",
			in:   BankRequisites{Swift: "BKCHCNBJ92B", TransferCurrency: "USD"},
			want: `{"swift":"BKCHCNBJ92B","transferCurrency":"USD","hasRequisites":true}`,
		},
		{
			name: "bank name alone does not identify a recipient",
			in:   BankRequisites{BankName: "BANK OF CHINA"},
			want: `{"bankName":"BANK OF CHINA","hasRequisites":false}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBankRequisitesRoundTrip(t *testing.T) {
	in := BankRequisites{AccountNumber: "40702810900000012345", RecipientName: "ООО \"Ромашка\""}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var out BankRequisites
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAttachBankInfo(t *testing.T) {
	var r ExtractionResult
	r.AttachBankInfo(BankRequisites{BankName: "BANK OF CHINA", TransferCurrency: "USD"})
	if r.BankInfo != nil {
		t.Fatalf("BankInfo = %+v, want nil without identifying fields", r.BankInfo)
	}
	r.AttachBankInfo(BankRequisites{AccountNumber: "397475795838"})
	if r.BankInfo == nil || r.BankInfo.AccountNumber != "397475795838" {
		t.Errorf("BankInfo = %+v, want account 397475795838", r.BankInfo)
	}
}

func TestItemCodes(t *testing.T) {
	var c ItemCodes
	got := []string{c.Next(), c.Next(), c.Next()}
	if diff := cmp.Diff([]string{"ITEM-1", "ITEM-2", "ITEM-3"}, got); diff != "" {
		t.Errorf("Next() mismatch (-want +got):\n%s", diff)
	}
	if c.Issued() != 3 {
		t.Errorf("Issued() = %d, want 3", c.Issued())
	}
}

func TestInvoiceInfoIsEmpty(t *testing.T) {
	if !(InvoiceInfo{}).IsEmpty() {
		t.Error("IsEmpty() = false for zero value")
	}
	vat := "20%"
	if (InvoiceInfo{VAT: &vat}).IsEmpty() {
		t.Error("IsEmpty() = true with VAT set")
	}
}
