package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

const (
	SheetItems      = "Items"
	SheetInvoices   = "Invoices"
	SheetRequisites = "Requisites"
)

var (
	itemHeaders       = []string{"Source", "Code", "Name", "Quantity", "Unit", "Price", "Total"}
	invoiceHeaders    = []string{"Source", "Number", "Date", "Total", "Secondary Total", "Currency", "VAT", "Seller", "Buyer"}
	requisitesHeaders = []string{"Source", "Bank", "Account", "SWIFT", "Recipient", "Address", "Currency"}
)

// Service renders extraction records as an XLSX workbook.
type Service struct {
	repo   repository.ExtractionRepository
	logger *slog.Logger
}

// NewService creates an export service. repo may be nil when only
// ExportXLSX is used.
func NewService(repo repository.ExtractionRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportRecentXLSX exports the newest stored extractions.
func (s *Service) ExportRecentXLSX(ctx context.Context, limit int) ([]byte, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("export: no repository configured")
	}
	recs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query extractions: %w", err)
	}
	return s.ExportXLSX(recs...)
}

// ExportXLSX returns a workbook with one Items, Invoices and Requisites
// sheet. Records without bank requisites get no Requisites row.
func (s *Service) ExportXLSX(records ...*entity.ExtractionRecord) ([]byte, error) {
	start := time.Now()
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("export.xlsx.close_failed", "error", err)
		}
	}()

	// The default sheet becomes Items so the workbook has no blank tab.
	if err := f.SetSheetName(f.GetSheetName(0), SheetItems); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetInvoices, SheetRequisites} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet %s: %w", name, err)
		}
	}

	items := newSheetWriter(f, SheetItems, itemHeaders)
	invoices := newSheetWriter(f, SheetInvoices, invoiceHeaders)
	requisites := newSheetWriter(f, SheetRequisites, requisitesHeaders)

	for _, rec := range records {
		if rec == nil {
			continue
		}
		res := rec.Result
		for _, it := range res.Items {
			items.row(rec.Source, it.Code, it.Name, it.Quantity, it.Unit, it.Price, it.Total)
		}
		info := res.InvoiceInfo
		invoices.row(rec.Source, str(info.Number), str(info.Date), num(info.TotalAmount),
			num(info.TotalAmountInSecondaryCurrency), str(info.Currency), str(info.VAT),
			str(info.Seller), str(info.Buyer))
		if b := res.BankInfo; b != nil {
			requisites.row(rec.Source, b.BankName, b.AccountNumber, b.Swift, b.RecipientName,
				truncate(b.RecipientAddress, 255), b.TransferCurrency)
		}
	}
	for _, w := range []*sheetWriter{items, invoices, requisites} {
		if w.err != nil {
			return nil, fmt.Errorf("write sheet %s: %w", w.sheet, w.err)
		}
	}

	_ = f.SetColWidth(SheetItems, "A", "A", 28)
	_ = f.SetColWidth(SheetItems, "C", "C", 48)
	_ = f.SetColWidth(SheetInvoices, "A", "A", 28)
	_ = f.SetColWidth(SheetInvoices, "H", "I", 40)
	_ = f.SetColWidth(SheetRequisites, "A", "E", 28)
	_ = f.SetColWidth(SheetRequisites, "F", "F", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.xlsx.ok",
		"records", len(records),
		"item_rows", items.next-2,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

func newSheetWriter(f *excelize.File, sheet string, headers []string) *sheetWriter {
	w := &sheetWriter{f: f, sheet: sheet, next: 1}
	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	w.row(cells...)
	return w
}

func (w *sheetWriter) row(values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, w.next)
	if err == nil {
		err = w.f.SetSheetRow(w.sheet, cell, &values)
	}
	w.err = err
	w.next++
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// num leaves the cell blank for a missing amount.
func num(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
