// Package pipeline chains a text source, the extraction engine and the
// optional repository into one call per document.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
	"github.com/joseph-ayodele/invoice-extractor/internal/textsource"
)

// TextSource reads a document from disk as text.
type TextSource interface {
	Extract(ctx context.Context, path string) (textsource.Result, error)
}

// DocumentExtractor is satisfied by *extraction.Engine.
type DocumentExtractor interface {
	ExtractDocument(ctx context.Context, text, docType string) (entity.ExtractionResult, error)
}

// Processor coordinates text extraction, field extraction and persistence.
type Processor struct {
	Source TextSource
	Engine DocumentExtractor
	Repo   repository.ExtractionRepository // nil disables persistence
	Logger *slog.Logger
}

func NewProcessor(src TextSource, engine DocumentExtractor, repo repository.ExtractionRepository, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Source: src, Engine: engine, Repo: repo, Logger: logger}
}

// ProcessFile reads path, extracts an invoice from its text and stores the
// result when a repository is configured.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*entity.ExtractionRecord, error) {
	ctx, reqID := common.EnsureRequestID(ctx)
	logger := p.Logger.With("req_id", reqID)

	src, err := p.Source.Extract(ctx, path)
	if err != nil {
		logger.Error("processor.text.failed", "path", path, "error", err)
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	for _, w := range src.Warnings {
		logger.Warn("processor.text.warning", "path", path, "warning", w)
	}
	logger.Info("processor.text.ok",
		"path", path,
		"method", src.Method,
		"pages", src.Pages,
		"elapsed_ms", src.Duration.Milliseconds(),
	)
	return p.ProcessText(ctx, filepath.Base(path), src.Text, "")
}

// ProcessText runs the engine over already extracted text. source labels the
// record; docType is the document-type hint.
func (p *Processor) ProcessText(ctx context.Context, source, text, docType string) (*entity.ExtractionRecord, error) {
	ctx, reqID := common.EnsureRequestID(ctx)
	logger := p.Logger.With("req_id", reqID)

	res, err := p.Engine.ExtractDocument(ctx, text, docType)
	if err != nil {
		return nil, err
	}
	if p.Repo != nil {
		rec, err := p.Repo.Save(ctx, source, res)
		if err != nil {
			logger.Error("processor.save.failed", "source", source, "error", err)
			return nil, err
		}
		return rec, nil
	}
	return newRecord(source, res), nil
}

func newRecord(source string, res entity.ExtractionResult) *entity.ExtractionRecord {
	return &entity.ExtractionRecord{
		ID:            uuid.New(),
		Source:        source,
		Route:         res.Route,
		ItemCount:     len(res.Items),
		HasRequisites: res.BankInfo != nil,
		Result:        res,
		CreatedAt:     time.Now().UTC(),
	}
}
