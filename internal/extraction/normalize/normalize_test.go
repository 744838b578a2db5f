package normalize

import "testing"

func TestDigits(t *testing.T) {
	tests := []struct {
		name   string
		field  Field
		raw    string
		want   string
		wantOK bool
	}{
		{"plain account", AccountNumber, "40702810900000012345", "40702810900000012345", true},
		{"spaced account", AccountNumber, "4070 2810 9000 0001 2345", "40702810900000012345", true},
		{"dotted and dashed", AccountNumber, "40702.810-900_000012345", "40702810900000012345", true},
		{"stray cyrillic letter", AccountNumber, "О40702810900000012345", "40702810900000012345", true},
		{"stray latin letter", AccountNumber, "l 40702810900000012345", "40702810900000012345", true},
		{"too short", AccountNumber, "4070281090000001234", "", false},
		{"too long", AccountNumber, "407028109000000123456", "", false},
		{"full-width digits", BIK, "０４４５２５２２５", "044525225", true},
		{"inn ten", INN, "7701234567", "7701234567", true},
		{"inn twelve", INN, "770123456789", "770123456789", true},
		{"inn eleven", INN, "77012345678", "", false},
		{"foreign account", ForeignAccount, "397475795838", "397475795838", true},
		{"foreign too short", ForeignAccount, "12345", "", false},
		{"empty", KPP, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Digits(tt.field, tt.raw)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Digits(%s, %q) = (%q, %v), want (%q, %v)", tt.field.Name, tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDigitsIdempotent(t *testing.T) {
	inputs := []string{"О40702810900000012345", "4070 2810 9000 0001 2345"}
	for _, in := range inputs {
		once, ok := Digits(AccountNumber, in)
		if !ok {
			t.Fatalf("Digits(%q) rejected", in)
		}
		twice, ok := Digits(AccountNumber, once)
		if !ok || twice != once {
			t.Errorf("Digits(Digits(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"15000.00", 15000, true},
		{"2 500,50", 2500.5, true},
		{"1,250.00", 1250, true},
		{"1.250,75", 1250.75, true},
		{"1,250", 1250, true},
		{"2,5", 2.5, true},
		{"12 000", 12000, true},
		{"abc", 0, false},
		{"", 0, false},
		{"-5", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseAmount(tt.raw)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseAmount(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"500", 500, true},
		{"500 pcs", 500, true},
		{"0", 0, false},
		{"pcs", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseQuantity(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseQuantity(%q) = (%v, %v), want (%v, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLineArithmetic(t *testing.T) {
	if got := LineTotal(3, 0.1); got != 0.3 {
		t.Errorf("LineTotal(3, 0.1) = %v, want 0.3", got)
	}
	if got := LineTotal(500, 2.5); got != 1250 {
		t.Errorf("LineTotal(500, 2.5) = %v, want 1250", got)
	}
	if got := UnitPrice(2500, 5); got != 500 {
		t.Errorf("UnitPrice(2500, 5) = %v, want 500", got)
	}
	if got := UnitPrice(10, 3); got != 3.33 {
		t.Errorf("UnitPrice(10, 3) = %v, want 3.33", got)
	}
	if got := UnitPrice(10, 0); got != 0 {
		t.Errorf("UnitPrice(10, 0) = %v, want 0", got)
	}
}

func TestCurrency(t *testing.T) {
	tests := map[string]string{
		"руб.": "RUB",
		"₽":    "RUB",
		"$":    "USD",
		"usd":  "USD",
		"€":    "EUR",
		"RMB":  "RMB",
		"CNY":  "RMB",
	}
	for in, want := range tests {
		if got := Currency(in); got != want {
			t.Errorf("Currency(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestText(t *testing.T) {
	in := "Итого：１２５０\r\nSWIFT CODE:ＢＫＣＨＣＮＢＪ\r№ 5"
	want := "Итого:1250\nSWIFT CODE:BKCHCNBJ\n№ 5"
	if got := Text(in); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestDocumentNumber(t *testing.T) {
	tests := []struct {
		raw    string
		wantOK bool
	}{
		{"15", true},
		{"INV-2024-007", true},
		{"Date", false},
		{"40702810900000012345", false},
		{"2024-115", true},
	}
	for _, tt := range tests {
		if _, ok := DocumentNumber(tt.raw); ok != tt.wantOK {
			t.Errorf("DocumentNumber(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
		}
	}
}
