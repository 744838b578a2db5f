// Package tabular parses spreadsheet text dumps: one "=== SHEET: name ==="
// marker per sheet followed by " | "-joined rows.
package tabular

import (
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/extraction/bankreq"
	"github.com/joseph-ayodele/invoice-extractor/internal/extraction/normalize"
)

var (
	reSheet = regexp.MustCompile(`^===\s*SHEET:\s*(.*?)\s*===\s*$`)

	reNumber = regexp.MustCompile(`(?i)(?:\bINV\.?\s*(?:No\.?)?\s*[:：#]|Сч[её]т\s*(?:№|N)?\s*[:：]?|\bInvoice\s*(?:No\.?|№|#)?\s*[:：]?)\s*([A-Za-z0-9][A-Za-z0-9\-_/]*)`)
	reDate   = regexp.MustCompile(`(?i)(\d{1,2}[./-]\d{1,2}[./-]\d{4}` +
		`|\d{4}[./-]\d{1,2}[./-]\d{1,2}` +
		`|\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec|январ|феврал|март|апрел|ма[йя]|июн|июл|август|сентябр|октябр|ноябр|декабр)\p{L}*\.?,?\s+\d{4}` +
		`|(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4})`)
	reAgent  = regexp.MustCompile(`(?i)\bAgent\s*:\s*([^|\n]+)`)
	reBuyer  = regexp.MustCompile(`(?i)\bBuyer\s*:\s*([^|\n]+)`)
	reLegal  = regexp.MustCompile(`(?i)(?:\bLTD\b|\bLLC\b|\bLIMITED\b|\bINC\b|\bCO\.|\bCORP\b|\bGmbH\b|ООО|ОАО|ЗАО|ПАО)`)
	reTotal  = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:Total|Итого)\s*(?:,\s*(RMB|RUB|USD|EUR))?`)
	reAmount = regexp.MustCompile(`\d[\d ,.]*\d|\d`)
	reCurTok = regexp.MustCompile(`(?i)\b(RMB|CNY|RUB|USD|EUR)\b|руб|₽|\$|€|¥`)

	reLeadingInt = regexp.MustCompile(`^\s*\d+\s*$`)
	reUnit       = regexp.MustCompile(`\p{L}+`)
)

var (
	tableStart = []string{"product description", "item number", "qty", "price,rmb", "price, rmb"}
	tableEnd   = []string{"total:", "deposit(rmb):", "payment terms:"}
)

// IsSpreadsheet reports whether text carries the sheet marker.
func IsSpreadsheet(text string) bool {
	return strings.Contains(text, constants.SheetMarker)
}

// Parser walks a spreadsheet dump once, collecting metadata from any line and
// items from table regions.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a tabular parser.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse extracts items, metadata and bank requisites from a sheet dump.
// Requisites are searched over the whole text.
func (p *Parser) Parse(text string, codes *entity.ItemCodes) entity.ExtractionResult {
	res := entity.ExtractionResult{Items: []entity.LineItem{}, Route: entity.RouteTabular}
	var meta metaScan
	used := make(map[string]bool)
	inTable := false
	sheet := ""

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if m := reSheet.FindStringSubmatch(trimmed); m != nil {
			sheet = m[1]
			inTable = false
			p.logger.Debug("tabular.sheet", "sheet", sheet)
			continue
		}
		meta.scan(trimmed)

		lower := strings.ToLower(trimmed)
		if containsAny(lower, tableEnd) {
			inTable = false
			continue
		}
		if isHeaderLine(trimmed) {
			inTable = true
			continue
		}
		if !inTable || !strings.Contains(trimmed, "|") {
			continue
		}
		if item, ok := parseRow(splitCells(trimmed)); ok {
			for item.Code == "" || used[item.Code] {
				item.Code = codes.Next()
			}
			used[item.Code] = true
			res.Items = append(res.Items, item)
		}
	}

	res.InvoiceInfo = meta.info
	bank := bankreq.Extract(text)
	res.AttachBankInfo(bank)
	p.logger.Debug("tabular.parsed", "items", len(res.Items), "last_sheet", sheet)
	return res
}

// parseRow tries the row shapes in order; the first shape that fits the
// cell layout decides the outcome even when its values are invalid.
func parseRow(cells []string) (entity.LineItem, bool) {
	numbered := len(cells) > 0 && reLeadingInt.MatchString(cells[0])
	switch {
	case numbered && len(cells) >= 6 && cells[1] != "":
		// number | code | name | qty | price | total
		return buildItem(cells[2], cells[1], cells[3], cells[4], cells[5])
	case len(cells) >= 3 && len(cells) <= 5 && !numbered && runeLen(cells[0]) > 5 && !isHeader(cells[0]):
		// name | qty | price [| total]
		total := ""
		if len(cells) >= 4 {
			total = cells[3]
		}
		return buildItem(cells[0], "", cells[1], cells[2], total)
	case numbered && len(cells) == 4:
		return buildItem(cells[1], "", cells[2], cells[3], "")
	case numbered && len(cells) >= 5:
		total := ""
		if len(cells) >= 6 {
			total = cells[5]
		}
		return buildItem(cells[2], cells[1], cells[3], cells[4], total)
	}
	return entity.LineItem{}, false
}

func buildItem(name, code, qtyCell, priceCell, totalCell string) (entity.LineItem, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return entity.LineItem{}, false
	}
	qty, ok := normalize.ParseQuantity(qtyCell)
	if !ok {
		return entity.LineItem{}, false
	}
	price, ok := normalize.ParseAmount(amountOnly(priceCell))
	if !ok || price <= 0 {
		return entity.LineItem{}, false
	}
	total, ok := normalize.ParseAmount(amountOnly(totalCell))
	if !ok || total <= 0 {
		total = normalize.LineTotal(qty, price)
	}
	unit := entity.DefaultUnit
	if u := reUnit.FindString(qtyCell); u != "" {
		unit = strings.ToLower(u)
	}
	return entity.LineItem{
		Name:     name,
		Quantity: qty,
		Price:    price,
		Total:    total,
		Code:     strings.TrimSpace(code),
		Unit:     unit,
	}, true
}

// metaScan keeps the first value seen for every field, except totals where a
// later total in another currency becomes the secondary amount.
type metaScan struct {
	info entity.InvoiceInfo
}

func (s *metaScan) scan(line string) {
	if s.info.Number == nil {
		if m := reNumber.FindStringSubmatch(line); m != nil {
			if v, ok := normalize.DocumentNumber(m[1]); ok {
				s.info.Number = &v
			}
		}
	}
	if s.info.Date == nil {
		if m := reDate.FindStringSubmatch(line); m != nil {
			v := m[1]
			s.info.Date = &v
		}
	}
	if s.info.Seller == nil {
		s.info.Seller = legalEntity(reAgent, line)
	}
	if s.info.Buyer == nil {
		s.info.Buyer = legalEntity(reBuyer, line)
	}
	s.total(line)
}

func (s *metaScan) total(line string) {
	m := reTotal.FindStringSubmatchIndex(line)
	if m == nil {
		return
	}
	amounts := reAmount.FindAllString(line[m[1]:], -1)
	if len(amounts) == 0 {
		return
	}
	amount, ok := normalize.ParseAmount(amounts[len(amounts)-1])
	if !ok {
		return
	}
	currency := ""
	if m[2] >= 0 {
		currency = normalize.Currency(line[m[2]:m[3]])
	} else if tok := reCurTok.FindString(line); tok != "" {
		currency = normalize.Currency(tok)
	}

	switch {
	case s.info.TotalAmount == nil:
		s.info.TotalAmount = &amount
		if currency != "" {
			s.info.Currency = &currency
		}
	case s.info.TotalAmountInSecondaryCurrency == nil && currency != "" &&
		s.info.Currency != nil && *s.info.Currency != currency:
		s.info.TotalAmountInSecondaryCurrency = &amount
	}
}

func legalEntity(re *regexp.Regexp, line string) *string {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(m[1])
	if !reLegal.MatchString(v) {
		return nil
	}
	return &v
}

// splitCells trims every cell and drops the empty edges produced by leading
// or trailing pipes; inner empty cells keep their column.
func splitCells(line string) []string {
	cells := strings.Split(strings.Trim(line, "| \t"), "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

// isHeader matches a whole cell against the column-header tokens, so a data
// cell that merely mentions "qty" is not taken for a header.
func isHeader(cell string) bool {
	return slices.Contains(tableStart, strings.ToLower(strings.TrimSpace(cell)))
}

func isHeaderLine(line string) bool {
	return slices.ContainsFunc(splitCells(line), isHeader)
}

func amountOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == '.' || r == ',' || r == ' ' {
			return r
		}
		return -1
	}, strings.TrimSpace(s))
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func runeLen(s string) int {
	return len([]rune(s))
}
