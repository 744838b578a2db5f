// Package freeform extracts invoice metadata and line items from unstructured
// OCR text.
package freeform

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/extraction/cascade"
	"github.com/joseph-ayodele/invoice-extractor/internal/extraction/normalize"
)

const (
	docToken    = `([A-Za-z0-9][A-Za-z0-9\-_/]*)`
	amountToken = `(\d+(?:[ \x{00a0},]\d{3})*(?:[.,]\d{1,2})?)`
	currencyTok = `(руб\.?|RUB|USD|EUR|₽|\$|€)`
	totalWords  = `(?:Итого|Всего|Сумма|Total)`
	sellerWords = `(?:Поставщик|Продавец|Исполнитель|Seller|Provider|Supplier)`
	buyerWords  = `(?:Покупатель|Заказчик|Плательщик|Buyer|Customer|Client)`
	orgPrefix   = `((?:ООО|ОАО|ЗАО|ПАО|АО|ИП)\s*[«"][^»"\n]+[»"])`
)

// Money is an amount paired with its currency code.
type Money struct {
	Amount   float64
	Currency string
}

var numberRules = cascade.Cascade[string]{
	{Name: "invoys", Pattern: regexp.MustCompile(`(?i)Инвойс\s*(?:№|N|No\.?|#)?\s*[:：]?\s*` + docToken), Accept: cascade.Group(1, normalize.DocumentNumber)},
	{Name: "schet", Pattern: regexp.MustCompile(`(?i)Сч[её]т(?:-фактура)?(?:\s+на\s+оплату)?\s*(?:№|N|No\.?|#)?\s*[:：]?\s*` + docToken), Accept: cascade.Group(1, normalize.DocumentNumber)},
	{Name: "invoice", Pattern: regexp.MustCompile(`(?i)Invoice\s*(?:No\.?|Number|#|№)?\s*[:：]?\s*` + docToken), Accept: cascade.Group(1, normalize.DocumentNumber)},
	{Name: "numero_sign", Pattern: regexp.MustCompile(`№\s*` + docToken), Accept: cascade.Group(1, normalize.DocumentNumber)},
	{Name: "nomer", Pattern: regexp.MustCompile(`(?i)Номер\s*[:：]?\s*` + docToken), Accept: cascade.Group(1, normalize.DocumentNumber)},
}

var dateRules = cascade.Cascade[string]{
	{Name: "labeled", Pattern: regexp.MustCompile(`(?i)(?:Дата|Date)\s*[:：]?\s*(\d{1,2}[./-]\d{1,2}[./-]\d{2,4}|\d{4}-\d{2}-\d{2})`), Accept: cascade.Group(1, nil)},
	{Name: "day_first", Pattern: regexp.MustCompile(`(\d{2}[./]\d{2}[./]\d{4})`), Accept: cascade.Group(1, nil)},
	{Name: "iso", Pattern: regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`), Accept: cascade.Group(1, nil)},
}

var totalRules = cascade.Cascade[Money]{
	{Name: "keyword_leading", Pattern: regexp.MustCompile(`(?i)` + totalWords + `[^\d\n]{0,40}?` + amountToken + `\s*` + currencyTok), Accept: moneyAt(1, 2)},
	{Name: "keyword_trailing", Pattern: regexp.MustCompile(`(?i)` + amountToken + `\s*` + currencyTok + `[ \t]*[-–:]?[ \t]*` + totalWords), Accept: moneyAt(1, 2)},
}

var vatRules = cascade.Cascade[string]{
	{Name: "vat_amount", Pattern: regexp.MustCompile(`(?i)(?:НДС|VAT)[^\d\n]{0,40}?` + amountToken + `\s*` + currencyTok), Accept: vatAmount},
	{Name: "vat_percent", Pattern: regexp.MustCompile(`(?i)(?:НДС|VAT)[^\d\n]{0,20}?(\d{1,2}(?:[.,]\d+)?)\s*%`), Accept: cascade.Group(1, func(s string) (string, bool) {
		return strings.Replace(s, ",", ".", 1) + "%", true
	})},
}

var sellerRules = cascade.Cascade[string]{
	{Name: "label", Pattern: regexp.MustCompile(`(?i)` + sellerWords + `[ \t]*[:：][ \t]*([^\n|]+)`), Accept: cascade.Group(1, party)},
	{Name: "org_with_role", Pattern: regexp.MustCompile(`(?i)` + orgPrefix + `[ \t]*[(\-–—,]?[ \t]*` + sellerWords), Accept: cascade.Group(1, party)},
}

var buyerRules = cascade.Cascade[string]{
	{Name: "label", Pattern: regexp.MustCompile(`(?i)` + buyerWords + `[ \t]*[:：][ \t]*([^\n|]+)`), Accept: cascade.Group(1, party)},
	{Name: "org_with_role", Pattern: regexp.MustCompile(`(?i)` + orgPrefix + `[ \t]*[(\-–—,]?[ \t]*` + buyerWords), Accept: cascade.Group(1, party)},
}

// ExtractMetadata runs the metadata cascades independently; a field whose
// cascade finds nothing is left nil.
func ExtractMetadata(text string) entity.InvoiceInfo {
	var info entity.InvoiceInfo
	if v, _, ok := numberRules.Find(text); ok {
		info.Number = &v
	}
	if v, _, ok := dateRules.Find(text); ok {
		info.Date = &v
	}
	if m, _, ok := totalRules.Find(text); ok {
		info.TotalAmount = &m.Amount
		info.Currency = &m.Currency
		if sec, ok := SecondaryTotal(text, m.Currency); ok {
			info.TotalAmountInSecondaryCurrency = &sec
		}
	}
	if v, _, ok := vatRules.Find(text); ok {
		info.VAT = &v
	}
	if v, _, ok := sellerRules.Find(text); ok {
		info.Seller = &v
	}
	if v, _, ok := buyerRules.Find(text); ok {
		info.Buyer = &v
	}
	return info
}

// SecondaryTotal returns the first total expressed in a currency other than
// primary.
func SecondaryTotal(text, primary string) (float64, bool) {
	for _, r := range totalRules {
		for _, m := range r.Pattern.FindAllStringSubmatch(text, -1) {
			if v, ok := r.Accept(m); ok && v.Currency != primary {
				return v.Amount, true
			}
		}
	}
	return 0, false
}

func moneyAt(amountAt, currencyAt int) func([]string) (Money, bool) {
	return func(m []string) (Money, bool) {
		v, ok := normalize.ParseAmount(m[amountAt])
		if !ok {
			return Money{}, false
		}
		return Money{Amount: v, Currency: normalize.Currency(m[currencyAt])}, true
	}
}

func vatAmount(m []string) (string, bool) {
	v, ok := normalize.ParseAmount(m[1])
	if !ok {
		return "", false
	}
	return normalize.FormatAmount(v), true
}

func party(s string) (string, bool) {
	s = strings.Trim(strings.TrimSpace(s), ",;")
	return s, len([]rune(s)) >= 2
}
