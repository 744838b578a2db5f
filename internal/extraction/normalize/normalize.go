// Package normalize holds the field-level cleanup shared by every extraction
// pipeline: digit-string validation for bank identifiers, amount and quantity
// parsing, currency symbols and full-width folding.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/width"
)

// Field describes a purely numeric identifier with an exact digit length.
// Either Lengths or the MinLen/MaxLen range is set.
type Field struct {
	Name    string
	Lengths []int
	MinLen  int
	MaxLen  int
}

var (
	AccountNumber  = Field{Name: "account_number", Lengths: []int{20}}
	ForeignAccount = Field{Name: "foreign_account", MinLen: 6, MaxLen: 34}
	BIK            = Field{Name: "bik", Lengths: []int{9}}
	KPP            = Field{Name: "kpp", Lengths: []int{9}}
	INN            = Field{Name: "inn", Lengths: []int{10, 12}}
	OGRN           = Field{Name: "ogrn", Lengths: []int{13}}
	OGRNIP         = Field{Name: "ogrnip", Lengths: []int{15}}
)

func (f Field) accepts(n int) bool {
	if len(f.Lengths) > 0 {
		for _, l := range f.Lengths {
			if n == l {
				return true
			}
		}
		return false
	}
	return n >= f.MinLen && (f.MaxLen == 0 || n <= f.MaxLen)
}

var (
	reSeparators  = regexp.MustCompile(`[\s\-_.]+`)
	reNonDigit    = regexp.MustCompile(`\D+`)
	reStrayLetter = regexp.MustCompile(`^[\p{Latin}\p{Cyrillic}][\s\-]?(\d)`)
	reCRLF        = regexp.MustCompile(`\r\n?`)
)

// Text folds full-width forms to their ASCII counterparts and unifies line
// endings. Cyrillic, CJK ideographs and symbols such as № are left untouched.
func Text(s string) string {
	s = reCRLF.ReplaceAllString(s, "\n")
	return width.Fold.String(s)
}

// StripSeparators removes spaces, hyphens, underscores and periods.
func StripSeparators(s string) string {
	return reSeparators.ReplaceAllString(s, "")
}

// Digits returns the cleaned digit string of raw when it satisfies f.
// A single OCR-prepended letter in front of the digits is dropped.
func Digits(f Field, raw string) (string, bool) {
	s := strings.TrimSpace(width.Fold.String(raw))
	s = reStrayLetter.ReplaceAllString(s, "$1")
	s = StripSeparators(s)
	s = reNonDigit.ReplaceAllString(s, "")
	if s == "" || !f.accepts(len(s)) {
		return "", false
	}
	return s, true
}

var amountNoise = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "'", "", "\u2019", "")

// ParseAmount parses a money-like token. Spaces are thousands separators;
// a lone comma followed by one or two digits is a decimal comma.
func ParseAmount(raw string) (float64, bool) {
	s := amountNoise.Replace(strings.TrimSpace(width.Fold.String(raw)))
	if s == "" {
		return 0, false
	}
	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-comma-1 <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// ParseQuantity keeps only the digits of raw and requires a positive integer.
func ParseQuantity(raw string) (int, bool) {
	s := reNonDigit.ReplaceAllString(width.Fold.String(raw), "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// LineTotal is quantity × price rounded to cents.
func LineTotal(quantity int, price float64) float64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		Round(2).
		InexactFloat64()
}

// UnitPrice is total / quantity rounded to cents.
func UnitPrice(total float64, quantity int) float64 {
	if quantity <= 0 {
		return 0
	}
	return decimal.NewFromFloat(total).
		Div(decimal.NewFromInt(int64(quantity))).
		Round(2).
		InexactFloat64()
}

// FormatAmount renders v with two decimals.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Currency maps a currency token or symbol to its ISO-style code.
func Currency(token string) string {
	t := strings.ToUpper(strings.Trim(strings.TrimSpace(token), "."))
	switch {
	case t == "₽" || strings.HasPrefix(t, "РУБ") || t == "RUB" || t == "RUR":
		return "RUB"
	case t == "$" || t == "USD":
		return "USD"
	case t == "€" || t == "EUR":
		return "EUR"
	case t == "¥" || t == "RMB" || t == "CNY" || t == "ЮАНЬ":
		return "RMB"
	}
	return t
}

// DocumentNumber accepts an invoice-number token: it must carry a digit and
// must not look like a bank account (a long pure digit run).
func DocumentNumber(s string) (string, bool) {
	s = strings.TrimSpace(s)
	hasDigit, allDigits := false, true
	for _, r := range s {
		if r >= '0' && r <= '9' {
			hasDigit = true
		} else {
			allDigits = false
		}
	}
	if !hasDigit || len(s) > 32 || (allDigits && len(s) >= 15) {
		return "", false
	}
	return s, true
}
