package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/extraction/normalize"
)

var (
	topSynonyms = map[string]string{
		"line_items":   "items",
		"lineItems":    "items",
		"invoice_info": "invoiceInfo",
		"invoice":      "invoiceInfo",
		"bank_info":    "bankInfo",
		"bank":         "bankInfo",
		"requisites":   "bankInfo",
	}
	itemSynonyms = map[string]string{
		"qty":         "quantity",
		"unit_price":  "price",
		"unitPrice":   "price",
		"amount":      "total",
		"description": "name",
	}
	invoiceSynonyms = map[string]string{
		"invoice_number": "number",
		"invoiceNumber":  "number",
		"total":          "totalAmount",
		"total_amount":   "totalAmount",
	}
	bankStringKeys    = []string{"bankName", "accountNumber", "swift", "recipientName", "recipientAddress", "transferCurrency"}
	invoiceStringKeys = []string{"number", "date", "seller", "buyer"}
)

// NormalizeAndSanitizeJSON
//   - Renames known synonyms (line_items -> items, qty -> quantity, ...)
//   - Coerces numeric strings ("2 500,00") to numbers
//   - Drops items without a name, a positive whole quantity or a price
//   - Drops null/empty optionals and unknown keys so the strict schema can pass
func NormalizeAndSanitizeJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string
	rename(m, topSynonyms, &dropped)

	items, _ := m["items"].([]any)
	kept := make([]any, 0, len(items))
	for i, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("items[%d](type)", i))
			continue
		}
		if reason := sanitizeItem(obj); reason != "" {
			dropped = append(dropped, fmt.Sprintf("items[%d](%s)", i, reason))
			continue
		}
		kept = append(kept, obj)
	}
	m["items"] = kept

	if inv, ok := m["invoiceInfo"].(map[string]any); ok {
		sanitizeInvoice(inv, &dropped)
		if len(inv) == 0 {
			delete(m, "invoiceInfo")
		}
	} else if _, present := m["invoiceInfo"]; present {
		delete(m, "invoiceInfo")
		dropped = append(dropped, "invoiceInfo(type)")
	}

	if bank, ok := m["bankInfo"].(map[string]any); ok {
		sanitizeBank(bank, &dropped)
		if len(bank) == 0 {
			delete(m, "bankInfo")
		}
	} else if _, present := m["bankInfo"]; present {
		delete(m, "bankInfo")
		dropped = append(dropped, "bankInfo(type)")
	}

	for k := range m {
		switch k {
		case "items", "invoiceInfo", "bankInfo":
		default:
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", "dropped", dropped)
	}
	return out, dropped, nil
}

// sanitizeItem normalizes one item in place and returns a non-empty reason
// when the item must be dropped.
func sanitizeItem(obj map[string]any) string {
	rename(obj, itemSynonyms, nil)

	name, _ := obj["name"].(string)
	name = strings.TrimSpace(name)
	if name == "" {
		return "name"
	}
	obj["name"] = name

	qty, ok := number(obj["quantity"])
	if !ok || qty < 1 || qty != math.Trunc(qty) {
		return "quantity"
	}
	obj["quantity"] = int(qty)

	price, ok := number(obj["price"])
	if !ok {
		return "price"
	}
	obj["price"] = price

	if total, ok := number(obj["total"]); ok {
		obj["total"] = total
	} else {
		delete(obj, "total")
	}
	for _, k := range []string{"code", "unit"} {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			obj[k] = strings.TrimSpace(s)
		} else {
			delete(obj, k)
		}
	}
	for k := range obj {
		switch k {
		case "name", "quantity", "price", "total", "code", "unit":
		default:
			delete(obj, k)
		}
	}
	return ""
}

func sanitizeInvoice(inv map[string]any, dropped *[]string) {
	rename(inv, invoiceSynonyms, dropped)

	for _, k := range invoiceStringKeys {
		switch v := inv[k].(type) {
		case string:
			keepTrimmed(inv, k, v, dropped)
		case float64:
			inv[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case nil:
			delete(inv, k)
		default:
			delete(inv, k)
			*dropped = append(*dropped, "invoiceInfo."+k+"(type)")
		}
	}

	switch v := inv["vat"].(type) {
	case string:
		keepTrimmed(inv, "vat", v, dropped)
	case float64:
		inv["vat"] = normalize.FormatAmount(v)
	default:
		delete(inv, "vat")
	}

	if s, ok := inv["currency"].(string); ok {
		if c := normalize.Currency(s); len(c) == 3 {
			inv["currency"] = c
		} else {
			delete(inv, "currency")
			*dropped = append(*dropped, "invoiceInfo.currency")
		}
	} else {
		delete(inv, "currency")
	}

	for _, k := range []string{"totalAmount", "totalAmountInSecondaryCurrency"} {
		if v, ok := number(inv[k]); ok {
			inv[k] = v
		} else {
			delete(inv, k)
		}
	}

	for k := range inv {
		switch k {
		case "number", "date", "seller", "buyer", "vat", "currency", "totalAmount", "totalAmountInSecondaryCurrency":
		default:
			delete(inv, k)
			*dropped = append(*dropped, "invoiceInfo."+k+"(unknown)")
		}
	}
}

func sanitizeBank(bank map[string]any, dropped *[]string) {
	delete(bank, "hasRequisites")
	if s, ok := bank["swift"].(string); ok {
		bank["swift"] = strings.ToUpper(strings.ReplaceAll(s, " ", ""))
	}
	allowed := make(map[string]bool, len(bankStringKeys))
	for _, k := range bankStringKeys {
		allowed[k] = true
		if s, ok := bank[k].(string); ok {
			keepTrimmed(bank, k, s, dropped)
		} else {
			delete(bank, k)
		}
	}
	for k := range bank {
		if !allowed[k] {
			delete(bank, k)
			*dropped = append(*dropped, "bankInfo."+k+"(unknown)")
		}
	}
}

func rename(m map[string]any, synonyms map[string]string, dropped *[]string) {
	for from, to := range synonyms {
		v, ok := m[from]
		if !ok {
			continue
		}
		if _, exists := m[to]; !exists {
			m[to] = v
		}
		delete(m, from)
		if dropped != nil {
			*dropped = append(*dropped, from+"->"+to)
		}
	}
}

func keepTrimmed(m map[string]any, k, v string, dropped *[]string) {
	s := strings.TrimSpace(v)
	if s == "" || strings.EqualFold(s, "null") {
		delete(m, k)
		*dropped = append(*dropped, k+"(empty)")
		return
	}
	m[k] = s
}

// number accepts JSON numbers and numeric strings in any of the amount
// notations the heuristic parsers understand.
func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, t >= 0
	case string:
		return normalize.ParseAmount(t)
	}
	return 0, false
}
