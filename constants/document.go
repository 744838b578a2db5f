package constants

// Document-type hints accepted by the extraction entry points.
const (
	DocumentTypeInvoice     = "invoice"
	DocumentTypeCompanyCard = "company_card"
)

// DocumentTypes lists the hints a caller may send.
var DocumentTypes = []string{DocumentTypeInvoice, DocumentTypeCompanyCard}

// SheetMarker prefixes every sheet header in a spreadsheet text dump.
const SheetMarker = "=== SHEET:"
