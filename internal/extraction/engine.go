// Package extraction routes raw document text to the tabular, AI-assisted or
// freeform pipeline and assembles one ExtractionResult.
package extraction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/extraction/bankreq"
	"github.com/joseph-ayodele/invoice-extractor/internal/extraction/freeform"
	"github.com/joseph-ayodele/invoice-extractor/internal/extraction/normalize"
	"github.com/joseph-ayodele/invoice-extractor/internal/extraction/tabular"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
)

const (
	defaultMinAITextLength = 100
	defaultAITimeout       = 30 * time.Second
)

// Config tunes the router. Zero values take the defaults.
type Config struct {
	MinAITextLength int
	AITimeout       time.Duration
}

// Engine is safe for concurrent use; all per-call state lives on the stack.
type Engine struct {
	ai      llm.InvoiceExtractor
	tabular *tabular.Parser
	cfg     Config
	logger  *slog.Logger
}

// NewEngine creates an engine. ai may be nil to disable the AI-assisted pass.
func NewEngine(ai llm.InvoiceExtractor, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinAITextLength <= 0 {
		cfg.MinAITextLength = defaultMinAITextLength
	}
	if cfg.AITimeout <= 0 {
		cfg.AITimeout = defaultAITimeout
	}
	return &Engine{
		ai:      ai,
		tabular: tabular.NewParser(logger),
		cfg:     cfg,
		logger:  logger,
	}
}

// ExtractDocument validates the document-type hint before extracting.
// Company registration cards belong to a different extractor.
func (e *Engine) ExtractDocument(ctx context.Context, text, docType string) (entity.ExtractionResult, error) {
	switch strings.ToLower(strings.TrimSpace(docType)) {
	case "", constants.DocumentTypeInvoice:
		return e.Extract(ctx, text), nil
	case constants.DocumentTypeCompanyCard:
		return entity.ExtractionResult{}, common.NewAppError("UNSUPPORTED_DOCUMENT_TYPE",
			"company_card documents are not handled by the invoice engine", common.ErrUnsupportedDocumentType)
	}
	return entity.ExtractionResult{}, common.NewAppError("INVALID_DOCUMENT_TYPE",
		fmt.Sprintf("unknown document type %q", docType), common.ErrInvalidInput)
}

// Extract never fails: collaborator errors fall through to the heuristic
// pipelines and missing fields stay absent.
func (e *Engine) Extract(ctx context.Context, text string) entity.ExtractionResult {
	start := time.Now()
	logger := common.LoggerWithRequest(ctx, e.logger)
	text = normalize.Text(text)
	codes := &entity.ItemCodes{}

	var res entity.ExtractionResult
	switch {
	case tabular.IsSpreadsheet(text):
		res = e.tabular.Parse(text, codes)
	case e.ai != nil && utf8.RuneCountInString(strings.TrimSpace(text)) > e.cfg.MinAITextLength:
		if r, ok := e.extractWithAI(ctx, text, codes, logger); ok {
			res = r
			break
		}
		res = extractFreeform(text, codes)
	default:
		res = extractFreeform(text, codes)
	}

	logger.Info("extract.route",
		"route", res.Route,
		"items", len(res.Items),
		"has_requisites", res.BankInfo != nil,
		"text_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

func (e *Engine) extractWithAI(ctx context.Context, text string, codes *entity.ItemCodes, logger *slog.Logger) (entity.ExtractionResult, bool) {
	start := time.Now()
	aiCtx, cancel := context.WithTimeout(ctx, e.cfg.AITimeout)
	defer cancel()

	fields, err := callAI(aiCtx, e.ai, llm.ExtractRequest{Text: text})
	if err != nil {
		logger.Warn("extract.ai.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return entity.ExtractionResult{}, false
	}
	res := adaptAI(fields, codes)
	if len(res.Items) == 0 {
		logger.Info("extract.ai.empty", "elapsed_ms", time.Since(start).Milliseconds())
		return entity.ExtractionResult{}, false
	}
	return res, true
}

// callAI converts a collaborator panic into an error.
func callAI(ctx context.Context, ai llm.InvoiceExtractor, req llm.ExtractRequest) (fields llm.InvoiceFields, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ai collaborator panic: %v", r)
		}
	}()
	fields, _, err = ai.ExtractInvoice(ctx, req)
	return fields, err
}

// adaptAI maps the collaborator's answer onto the result shape: missing
// totals are recomputed, units default to pcs, and codes stay unique.
func adaptAI(f llm.InvoiceFields, codes *entity.ItemCodes) entity.ExtractionResult {
	res := entity.ExtractionResult{Items: make([]entity.LineItem, 0, len(f.Items)), Route: entity.RouteAI}
	used := make(map[string]bool, len(f.Items))
	for _, it := range f.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" || it.Quantity <= 0 || it.Price < 0 {
			continue
		}
		total := it.Total
		if total <= 0 {
			total = normalize.LineTotal(it.Quantity, it.Price)
		}
		code := strings.TrimSpace(it.Code)
		for code == "" || used[code] {
			code = codes.Next()
		}
		used[code] = true
		unit := strings.TrimSpace(it.Unit)
		if unit == "" {
			unit = entity.DefaultUnit
		}
		res.Items = append(res.Items, entity.LineItem{
			Name:     name,
			Quantity: it.Quantity,
			Price:    it.Price,
			Total:    total,
			Code:     code,
			Unit:     unit,
		})
	}
	if f.InvoiceInfo != nil {
		res.InvoiceInfo = *f.InvoiceInfo
	}
	if f.BankInfo != nil {
		res.AttachBankInfo(*f.BankInfo)
	}
	return res
}

func extractFreeform(text string, codes *entity.ItemCodes) entity.ExtractionResult {
	res := entity.ExtractionResult{
		InvoiceInfo: freeform.ExtractMetadata(text),
		Items:       freeform.ParseItems(text, codes),
		Route:       entity.RouteFreeform,
	}
	if res.Items == nil {
		res.Items = []entity.LineItem{}
	}
	res.AttachBankInfo(bankreq.Extract(text))
	return res
}
