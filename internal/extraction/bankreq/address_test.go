package bankreq

import "testing"

func TestCleanAddress(t *testing.T) {
	tests := []struct {
		name   string
		span   string
		want   string
		wantOK bool
	}{
		{
			name:   "drops pipe and rmb row",
			span:   "No. 5 Xinhua Road\nCarlic crusher | 2.50 | RMB\nYiwu, Zhejiang",
			want:   "No. 5 Xinhua Road Yiwu, Zhejiang",
			wantOK: true,
		},
		{
			name:   "drops table header",
			span:   "Room 301, Building 2\nProduct description | Quantity, psc | Price, RMB",
			want:   "Room 301, Building 2",
			wantOK: true,
		},
		{
			name:   "drops numeric lines",
			span:   "Ningbo\n2.50\n123456789012\n315000",
			want:   "Ningbo 315000",
			wantOK: true,
		},
		{
			name:   "stops at next label",
			span:   "Hangzhou\nSWIFT CODE: BKCHCNBJ92B\nShould not appear",
			want:   "Hangzhou",
			wantOK: true,
		},
		{
			name:   "street named after a bank continues",
			span:   "Bank Road 5\nBankstraße 3\nYiwu",
			want:   "Bank Road 5 Bankstraße 3 Yiwu",
			wantOK: true,
		},
		{
			name:   "stops at bank name label",
			span:   "Yiwu\nBANK NAME: BANK OF CHINA",
			want:   "Yiwu",
			wantOK: true,
		},
		{
			name:   "product fragment",
			span:   "Garlic Crusher deluxe\nShenzhen",
			want:   "Shenzhen",
			wantOK: true,
		},
		{
			name:   "everything contaminated",
			span:   "\n1250.00\nPeeler | 1.20 | RMB",
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CleanAddress(tt.span)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("CleanAddress() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestScenarioAddressWithContamination(t *testing.T) {
	text := "ADDRESS: Room 8, Futian Street\nCarlic crusher | 2.50 | RMB\nYiwu City"
	got := Extract(text).RecipientAddress
	want := "Room 8, Futian Street Yiwu City"
	if got != want {
		t.Errorf("RecipientAddress = %q, want %q", got, want)
	}
}
