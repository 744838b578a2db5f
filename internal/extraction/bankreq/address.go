package bankreq

import (
	"regexp"
	"strings"
)

// Table-header tokens that leak into an address span when the requisites
// block sits next to the goods table.
var tableHeaderTokens = []string{
	"product description",
	"quantity, psc",
	"quantity,psc",
	"price, rmb",
	"price,rmb",
	"total, rmb",
	"total,rmb",
}

// Product fragments seen bleeding into addresses of spreadsheet exports.
var productFragments = []string{
	"crusher",
	"peeler",
	"grater",
	"slicer",
}

var (
	rePriceLine = regexp.MustCompile(`^\d+[.,]\d{1,2}$`)
	reCodeLine  = regexp.MustCompile(`^\d{9,}$`)
	reNextLabel = regexp.MustCompile(`(?i)^(?:SWIFT|SWIF\s|BIC\b|ACCOUNT|A/C|[A-Z]{3}\s*A/C|BANK\s*(?:NAME|ADDRESS|OF)\b|BANK\s*[:：]|BENEFICIARY|TEL\b|PHONE|ИНН|КПП|БИК|Р/с|Получатель)`)
)

// CleanAddress removes contaminating lines from a captured address span and
// rejoins the rest in order. The span is cut at the first continuation line
// that opens another requisites field.
func CleanAddress(span string) (string, bool) {
	var kept []string
	for i, line := range strings.Split(span, "\n") {
		line = strings.TrimSpace(line)
		if i > 0 && reNextLabel.MatchString(line) {
			break
		}
		if line == "" || contaminated(line) {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, " "), true
}

func contaminated(line string) bool {
	lower := strings.ToLower(line)
	for _, t := range tableHeaderTokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	for _, p := range productFragments {
		if strings.Contains(lower, p) {
			return true
		}
	}
	if strings.Contains(line, "|") && strings.Contains(strings.ToUpper(line), "RMB") {
		return true
	}
	return rePriceLine.MatchString(line) || reCodeLine.MatchString(line)
}
