// Package bankreq recovers the recipient's bank requisites from invoice text.
package bankreq

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/extraction/cascade"
	"github.com/joseph-ayodele/invoice-extractor/internal/extraction/normalize"
)

const minBankNameLen = 4

const (
	digitToken   = `(\d[\d \-]{4,48}\d)`
	localToken   = `(\p{L}?[ ]?\d[\d \-.]*\d)`
	verbatimTok  = `([A-Za-z0-9][A-Za-z0-9\-]{3,40})`
	swiftToken   = `([A-Za-z0-9]{6,14})`
	lineValue    = `[ \t]*([^\n|]+)`
	addressValue = `[ \t]*([^\n]*(?:\n[^\n]*){0,3})`
)

var accountRules = cascade.Cascade[string]{
	{Name: "usd_ac_no", Pattern: regexp.MustCompile(`(?i)USD\s*A/?C\s*NO\.?\s*[:：]?\s*` + digitToken), Accept: cascade.Group(1, digits(normalize.ForeignAccount))},
	{Name: "eur_ac_no", Pattern: regexp.MustCompile(`(?i)EUR\s*A/?C\s*NO\.?\s*[:：]?\s*` + digitToken), Accept: cascade.Group(1, digits(normalize.ForeignAccount))},
	{Name: "account_number", Pattern: regexp.MustCompile(`(?i)Account\s+Number\s*[:：]?\s*` + localToken), Accept: cascade.Group(1, digits(normalize.AccountNumber))},
	{Name: "ac_no", Pattern: regexp.MustCompile(`(?i)A/C\s*No\.?\s*[:：]\s*` + verbatimTok), Accept: cascade.Group(1, nil)},
	{Name: "account_no", Pattern: regexp.MustCompile(`(?i)Account\s*No\.?\s*[:：]\s*` + verbatimTok), Accept: cascade.Group(1, nil)},
	{Name: "nomer_scheta", Pattern: regexp.MustCompile(`(?i)Номер\s+сч[её]та\s*[:：]?\s*` + localToken), Accept: cascade.Group(1, digits(normalize.AccountNumber))},
	{Name: "rs", Pattern: regexp.MustCompile(`(?i)(?:Р/с|Расч[её]тный\s+сч[её]т)\s*[:：№]?\s*` + localToken), Accept: cascade.Group(1, digits(normalize.AccountNumber))},
}

var reSwiftShape = regexp.MustCompile(`^[A-Z]{4}[A-Z]{2}[A-Z0-9]{2}(?:[A-Z0-9]{3})?$`)

var swiftRules = cascade.Cascade[string]{
	{Name: "swift_code", Pattern: regexp.MustCompile(`(?i)SWIFT\s*CODE\s*[:：]?\s*` + swiftToken), Accept: cascade.Group(1, swiftCode)},
	{Name: "swif_code", Pattern: regexp.MustCompile(`(?i)SWIF\s*CODE\s*[:：]?\s*` + swiftToken), Accept: cascade.Group(1, swiftCode)},
	{Name: "swift", Pattern: regexp.MustCompile(`(?i)SWIFT(?:\s*/\s*BIC)?\s*[:：]?\s*` + swiftToken), Accept: cascade.Group(1, swiftCode)},
	{Name: "bic", Pattern: regexp.MustCompile(`(?:^|[^A-Za-z])BIC\s*[:：]?\s*` + swiftToken), Accept: cascade.Group(1, swiftCode)},
}

var bankNameRules = cascade.Cascade[string]{
	{Name: "bank_name", Pattern: regexp.MustCompile(`(?i)BANK\s*NAME\s*(?:\([^)\n]*\)|（[^）\n]*）)?\s*[:：]?` + lineValue), Accept: cascade.Group(1, bankName)},
	{Name: "bank_of", Pattern: regexp.MustCompile(`(?i)(BANK[ \t]+OF[ \t]+[^\n|]+)`), Accept: cascade.Group(1, bankName)},
	{Name: "upper_bank", Pattern: regexp.MustCompile(`([A-Z][A-Z&.,'()\- ]*BANK[A-Z&.,'()\- ]*)`), Accept: cascade.Group(1, upperBankName)},
	{Name: "sellers_bank", Pattern: regexp.MustCompile(`(?i)Sellers?['’]?\s*Bank\s*[:：]` + lineValue), Accept: cascade.Group(1, bankName)},
	{Name: "bank_address", Pattern: regexp.MustCompile(`(?i)Bank\s*address\s*[:：]` + lineValue), Accept: cascade.Group(1, bankName)},
}

var recipientNameRules = cascade.Cascade[string]{
	{Name: "account_name", Pattern: regexp.MustCompile(`(?i)ACCOUNT\s*NAME\s*[:：]` + lineValue), Accept: cascade.Group(1, partyName)},
	{Name: "beneficiary_name", Pattern: regexp.MustCompile(`(?i)BENEFICIARY(?:['’]?S)?\s*NAME\s*[:：]` + lineValue), Accept: cascade.Group(1, partyName)},
	{Name: "poluchatel", Pattern: regexp.MustCompile(`(?i)Получатель\s*[:：]?` + lineValue), Accept: cascade.Group(1, partyName)},
}

var recipientAddressRules = cascade.Cascade[string]{
	{Name: "beneficiary_address", Pattern: regexp.MustCompile(`(?i)BENEFICIARY(?:['’]?S)?\s*ADDRESS\s*[:：]` + addressValue), Accept: cascade.Group(1, CleanAddress)},
	{Name: "address", Pattern: regexp.MustCompile(`(?im)^[ \t]*ADDRESS\s*[:：]` + addressValue), Accept: cascade.Group(1, CleanAddress)},
	{Name: "adres", Pattern: regexp.MustCompile(`(?im)^[ \t]*(?:Юридический\s+)?Адрес\s*[:：]?` + addressValue), Accept: cascade.Group(1, CleanAddress)},
}

var (
	reUSDLabel = regexp.MustCompile(`(?i)USD\s*A/?C`)
	reEURLabel = regexp.MustCompile(`(?i)EUR\s*A/?C`)
	reUSDToken = regexp.MustCompile(`(?:^|[^A-Za-z])USD(?:[^A-Za-z]|$)`)
	reEURToken = regexp.MustCompile(`(?:^|[^A-Za-z])EUR(?:[^A-Za-z]|$)`)
)

// Extract runs every requisites cascade over text. Fields without an
// accepted candidate stay empty; the caller decides whether to attach the
// result via HasRequisites.
func Extract(text string) entity.BankRequisites {
	var b entity.BankRequisites
	b.AccountNumber, _, _ = accountRules.Find(text)
	b.Swift, _, _ = swiftRules.Find(text)
	b.BankName, _, _ = bankNameRules.Find(text)
	b.RecipientName, _, _ = recipientNameRules.Find(text)
	b.RecipientAddress, _, _ = recipientAddressRules.Find(text)
	b.TransferCurrency = transferCurrency(text)
	return b
}

// transferCurrency infers only USD and EUR, in that order.
func transferCurrency(text string) string {
	switch {
	case reUSDLabel.MatchString(text) || reUSDToken.MatchString(text):
		return "USD"
	case reEURLabel.MatchString(text) || reEURToken.MatchString(text):
		return "EUR"
	}
	return ""
}

func digits(f normalize.Field) func(string) (string, bool) {
	return func(s string) (string, bool) { return normalize.Digits(f, s) }
}

func swiftCode(s string) (string, bool) {
	s = strings.ToUpper(s)
	return s, reSwiftShape.MatchString(s)
}

func bankName(s string) (string, bool) {
	s = strings.TrimFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	return s, utf8.RuneCountInString(s) >= minBankNameLen
}

func upperBankName(s string) (string, bool) {
	if strings.Contains(s, "BANK NAME") || strings.Contains(s, "BANK ADDRESS") {
		return "", false
	}
	return bankName(s)
}

func partyName(s string) (string, bool) {
	s = strings.Trim(strings.TrimSpace(s), ",;")
	return s, utf8.RuneCountInString(s) >= 2
}
