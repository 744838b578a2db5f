package llm

import (
	"context"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

// ItemFields is one line item as returned by an AI collaborator. Code and
// Unit are optional; a zero Total means the collaborator omitted it.
type ItemFields struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Total    float64 `json:"total,omitempty"`
	Code     string  `json:"code,omitempty"`
	Unit     string  `json:"unit,omitempty"`
}

// InvoiceFields is the normalized shape we want from the AI collaborator.
type InvoiceFields struct {
	Items       []ItemFields           `json:"items"`
	InvoiceInfo *entity.InvoiceInfo    `json:"invoiceInfo,omitempty"`
	BankInfo    *entity.BankRequisites `json:"bankInfo,omitempty"`
}

type ExtractRequest struct {
	Text         string
	FilenameHint string
}

// InvoiceExtractor is the AI-assisted extraction collaborator the format
// router consults before the heuristic pipelines.
type InvoiceExtractor interface {
	ExtractInvoice(ctx context.Context, req ExtractRequest) (InvoiceFields, []byte /*rawJSON*/, error)
}
