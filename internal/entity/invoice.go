package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultUnit is used for line items whose source does not name a unit.
const DefaultUnit = "pcs"

// LineItem is one purchased position of an invoice.
type LineItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total"`
	Code     string  `json:"code"`
	Unit     string  `json:"unit"`
}

// InvoiceInfo carries document-level metadata. A nil field means the value
// was not found in the source text.
type InvoiceInfo struct {
	Number                         *string  `json:"number,omitempty"`
	Date                           *string  `json:"date,omitempty"`
	TotalAmount                    *float64 `json:"totalAmount,omitempty"`
	TotalAmountInSecondaryCurrency *float64 `json:"totalAmountInSecondaryCurrency,omitempty"`
	Currency                       *string  `json:"currency,omitempty"`
	VAT                            *string  `json:"vat,omitempty"`
	Seller                         *string  `json:"seller,omitempty"`
	Buyer                          *string  `json:"buyer,omitempty"`
}

// IsEmpty reports whether no metadata field was found.
func (i InvoiceInfo) IsEmpty() bool {
	return i.Number == nil && i.Date == nil && i.TotalAmount == nil &&
		i.TotalAmountInSecondaryCurrency == nil && i.Currency == nil &&
		i.VAT == nil && i.Seller == nil && i.Buyer == nil
}

// BankRequisites are the payment details of the recipient.
type BankRequisites struct {
	BankName         string `json:"bankName,omitempty"`
	AccountNumber    string `json:"accountNumber,omitempty"`
	Swift            string `json:"swift,omitempty"`
	RecipientName    string `json:"recipientName,omitempty"`
	RecipientAddress string `json:"recipientAddress,omitempty"`
	TransferCurrency string `json:"transferCurrency,omitempty"`
}

// HasRequisites is derived from the identifying fields and cannot be set.
func (b BankRequisites) HasRequisites() bool {
	return b.AccountNumber != "" || b.Swift != "" || b.RecipientName != ""
}

type bankRequisitesJSON BankRequisites

func (b BankRequisites) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		bankRequisitesJSON
		HasRequisites bool `json:"hasRequisites"`
	}{bankRequisitesJSON(b), b.HasRequisites()})
}

// ExtractionResult is the product of one extraction run.
type ExtractionResult struct {
	Items       []LineItem      `json:"items"`
	InvoiceInfo InvoiceInfo     `json:"invoiceInfo"`
	BankInfo    *BankRequisites `json:"bankInfo,omitempty"`
	Route       Route           `json:"route,omitempty"`
}

// AttachBankInfo sets BankInfo only when the requisites identify a recipient.
func (r *ExtractionResult) AttachBankInfo(b BankRequisites) {
	if !b.HasRequisites() {
		r.BankInfo = nil
		return
	}
	r.BankInfo = &b
}

// Route names the pipeline that produced a result.
type Route string

const (
	RouteTabular  Route = "tabular"
	RouteAI       Route = "ai"
	RouteFreeform Route = "freeform"
)

// ItemCodes hands out ITEM-<n> codes for one extraction call.
type ItemCodes struct {
	n int
}

func (c *ItemCodes) Next() string {
	c.n++
	return fmt.Sprintf("ITEM-%d", c.n)
}

// Issued returns how many codes were handed out so far.
func (c *ItemCodes) Issued() int { return c.n }

// ExtractionRecord is a persisted extraction.
type ExtractionRecord struct {
	ID            uuid.UUID        `json:"id"`
	Source        string           `json:"source"`
	Route         Route            `json:"route"`
	ItemCount     int              `json:"itemCount"`
	HasRequisites bool             `json:"hasRequisites"`
	Result        ExtractionResult `json:"result"`
	CreatedAt     time.Time        `json:"createdAt"`
}
