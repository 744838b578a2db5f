package freeform

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/extraction/normalize"
)

const (
	minLineLen = 5
	minNameLen = 3

	itemAmount = `(\d+(?:[ \x{00a0}]\d{3})*(?:[.,]\d{1,2})?)`
	itemCur    = `(?:руб\.?|р\.|₽|RUB|USD|EUR|RMB|\$|€)`
	unitWord   = `(\p{L}+\.?)`
	unitToken  = `(шт\.?|pcs\.?|pc\.?|ед\.?|компл\.?|кг|kg|м|m|set)`
)

// grammar is one line shape. The *At fields are submatch indexes; zero means
// the grammar does not carry that value.
type grammar struct {
	name    string
	re      *regexp.Regexp
	nameAt  int
	qtyAt   int
	unitAt  int
	priceAt int
	totalAt int
}

// Order matters: the first grammar that matches a line owns it.
var grammars = []grammar{
	{
		name:   "pipe",
		re:     regexp.MustCompile(`^(.+?)\s*\|\s*(\d+)\s*` + unitWord + `?\s*\|\s*` + itemAmount + `\s*` + itemCur + `?\s*(?:\|\s*` + itemAmount + `\s*` + itemCur + `?\s*)?\|?$`),
		nameAt: 1, qtyAt: 2, unitAt: 3, priceAt: 4, totalAt: 5,
	},
	{
		name:   "multiplier",
		re:     regexp.MustCompile(`^(.+?)\s+[xх×]\s*(\d+)\s*=\s*` + itemAmount + `\s*` + itemCur + `?$`),
		nameAt: 1, qtyAt: 2, totalAt: 3,
	},
	{
		name:   "parenthetical",
		re:     regexp.MustCompile(`^(.+?)\s*\(\s*(\d+)\s*` + unitWord + `?\s*(?:по|x|х|×|@)\s*` + itemAmount + `\s*` + itemCur + `?\s*\)(?:\s*[=-]?\s*` + itemAmount + `\s*` + itemCur + `?)?$`),
		nameAt: 1, qtyAt: 2, unitAt: 3, priceAt: 4, totalAt: 5,
	},
	{
		name:   "dash",
		re:     regexp.MustCompile(`(?i)^(.+?)\s+[-–—]\s+(\d+)\s*` + unitToken + `\s+[-–—]\s+` + itemAmount + `\s*` + itemCur + `(?:\s+[-–—]\s+` + itemAmount + `\s*` + itemCur + `?)?$`),
		nameAt: 1, qtyAt: 2, unitAt: 3, priceAt: 4, totalAt: 5,
	},
	{
		name:   "bare_numbers",
		re:     regexp.MustCompile(`^(.+?)\s+(\d+)\s+(\d+(?:[.,]\d{1,2})?)$`),
		nameAt: 1, qtyAt: 2, priceAt: 3,
	},
	{
		name:   "asterisk",
		re:     regexp.MustCompile(`^(.+?)\s+(\d+)\s*\*\s*` + itemAmount + `\s*=\s*` + itemAmount + `\s*` + itemCur + `?$`),
		nameAt: 1, qtyAt: 2, priceAt: 3, totalAt: 4,
	},
	{
		name:   "labeled",
		re:     regexp.MustCompile(`(?i)^(.+?)[\s,;]+(?:Qty|Кол-во|Количество)\s*[:：]?\s*(\d+)\s*` + unitWord + `?[\s,;]+(?:Price|Цена)\s*[:：]?\s*` + itemAmount + `\s*` + itemCur + `?(?:[\s,;]+(?:Total|Sum|Сумма)\s*[:：]?\s*` + itemAmount + `\s*` + itemCur + `?)?$`),
		nameAt: 1, qtyAt: 2, unitAt: 3, priceAt: 4, totalAt: 5,
	},
	{
		name:   "at_sign",
		re:     regexp.MustCompile(`^(.+?)\s*@\s*` + itemAmount + `\s*` + itemCur + `?\s*[xх×*]\s*(\d+)$`),
		nameAt: 1, priceAt: 2, qtyAt: 3,
	},
	{
		name:   "script_name",
		re:     regexp.MustCompile(`^([\p{Cyrillic}\p{Latin}][\p{Cyrillic}\p{Latin} .,"«»'\-]*?)\s+(\d+)\s*` + unitToken + `?\s+` + itemAmount + `\s*` + itemCur + `?$`),
		nameAt: 1, qtyAt: 2, unitAt: 3, priceAt: 4,
	},
}

var (
	reSectionStart = regexp.MustCompile(`(?i)(?:Товары|Товар|Items|Наименование|Description)`)
	reSectionEnd   = regexp.MustCompile(`(?i)^\s*(?:Итого|Всего|Total)`)
	reHasDigit     = regexp.MustCompile(`\d`)
	reMetaLabel    = regexp.MustCompile(`(?i)(?:ИНН|КПП|БИК|ОГРН|SWIFT|SWIF\s|IBAN|A/C|Р/с|Кор\.?\s*сч|Invoice\s*(?:No|#|Date)|Инвойс|Сч[её]т\s*(?:№|на\s+оплату)|Дата\s*[:：]|Date\s*[:：]|Tel\b|Тел\.|Телефон\s*[:：]|Phone|Fax|Факс|Account|НДС|VAT\b)`)

	reProductWord = regexp.MustCompile(`(?i)(?:монитор|ноутбук|компьютер|клавиатур|мыш|принтер|кабель|стол|стул|кресл|шкаф|телефон|товар|monitor|laptop|notebook|computer|keyboard|mouse|printer|cable|desk|chair|table|cabinet|phone|product|goods)`)
	reCJK         = regexp.MustCompile(`[\p{Han}\p{Hiragana}\p{Katakana}\p{Hangul}]`)
	reNumberToken = regexp.MustCompile(`\d+[.,]?\d*`)

	reNameJunk  = regexp.MustCompile(`[^\p{Latin}\p{Cyrillic}\p{Han}\p{Hiragana}\p{Katakana}\p{Hangul}\s]+`)
	reNameSpace = regexp.MustCompile(`\s+`)
)

type candidate struct {
	name     string
	qty      int
	unit     string
	price    float64
	total    float64
	hasTotal bool
}

// ParseItems runs the line grammars over text. The keyword fallback runs only
// when no grammar produced an item. Codes come from codes, shared with any
// other item-producing pass of the same extraction.
func ParseItems(text string, codes *entity.ItemCodes) []entity.LineItem {
	items := parseGrammarLines(text, codes)
	if len(items) > 0 {
		return items
	}
	return parseKeywordLines(text, codes)
}

func parseGrammarLines(text string, codes *entity.ItemCodes) []entity.LineItem {
	var items []entity.LineItem
	inSection := false
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if reSectionEnd.MatchString(line) {
			inSection = false
			continue
		}
		if reSectionStart.MatchString(line) {
			inSection = true
		}
		if utf8.RuneCountInString(line) <= minLineLen {
			continue
		}
		if !inSection && !reHasDigit.MatchString(line) {
			continue
		}
		if reMetaLabel.MatchString(line) {
			continue
		}
		c, ok := matchLine(line)
		if !ok {
			continue
		}
		if item, ok := newItem(c, codes); ok {
			items = append(items, item)
		}
	}
	return items
}

// matchLine returns the candidate of the first matching grammar. A match
// with malformed numbers drops the line instead of trying later grammars.
func matchLine(line string) (candidate, bool) {
	for _, g := range grammars {
		m := g.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		return g.candidate(m)
	}
	return candidate{}, false
}

func (g grammar) candidate(m []string) (candidate, bool) {
	qty, err := strconv.Atoi(m[g.qtyAt])
	if err != nil || qty <= 0 {
		return candidate{}, false
	}
	c := candidate{name: m[g.nameAt], qty: qty}
	if g.unitAt > 0 {
		c.unit = unitLabel(m[g.unitAt])
	}
	if g.totalAt > 0 && m[g.totalAt] != "" {
		total, ok := normalize.ParseAmount(m[g.totalAt])
		if !ok {
			return candidate{}, false
		}
		c.total, c.hasTotal = total, true
	}
	switch {
	case g.priceAt > 0:
		price, ok := normalize.ParseAmount(m[g.priceAt])
		if !ok {
			return candidate{}, false
		}
		c.price = price
	case c.hasTotal:
		c.price = normalize.UnitPrice(c.total, qty)
	default:
		return candidate{}, false
	}
	return c, true
}

func parseKeywordLines(text string, codes *entity.ItemCodes) []entity.LineItem {
	var items []entity.LineItem
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if !reProductWord.MatchString(line) && !reCJK.MatchString(line) {
			continue
		}
		if reMetaLabel.MatchString(line) {
			continue
		}
		tokens := reNumberToken.FindAllString(line, -1)
		if len(tokens) < 2 {
			continue
		}
		qty, ok := integral(tokens[0])
		if !ok {
			continue
		}
		price, ok := normalize.ParseAmount(tokens[1])
		if !ok {
			continue
		}
		c := candidate{name: reNumberToken.ReplaceAllString(line, " "), qty: qty, price: price}
		if len(tokens) > 2 {
			if total, ok := normalize.ParseAmount(tokens[2]); ok {
				c.total, c.hasTotal = total, true
			}
		}
		if item, ok := newItem(c, codes); ok {
			items = append(items, item)
		}
	}
	return items
}

func newItem(c candidate, codes *entity.ItemCodes) (entity.LineItem, bool) {
	name := CleanName(c.name)
	if utf8.RuneCountInString(name) < minNameLen {
		return entity.LineItem{}, false
	}
	total := c.total
	if !c.hasTotal {
		total = normalize.LineTotal(c.qty, c.price)
	}
	unit := c.unit
	if unit == "" {
		unit = entity.DefaultUnit
	}
	return entity.LineItem{
		Name:     name,
		Quantity: c.qty,
		Price:    c.price,
		Total:    total,
		Code:     codes.Next(),
		Unit:     unit,
	}, true
}

// CleanName keeps Latin, Cyrillic and CJK letters; digits, punctuation and
// symbols become spaces and whitespace runs collapse.
func CleanName(s string) string {
	s = reNameJunk.ReplaceAllString(s, " ")
	return strings.TrimSpace(reNameSpace.ReplaceAllString(s, " "))
}

func unitLabel(s string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), ".")
}

func integral(tok string) (int, bool) {
	v, ok := normalize.ParseAmount(tok)
	if !ok || v <= 0 || v != float64(int(v)) {
		return 0, false
	}
	return int(v), true
}
