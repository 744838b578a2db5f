// Package textsource turns source documents (PDF, images, plain text,
// spreadsheets) into the raw text the extraction engine consumes.
package textsource

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

type Config struct {
	Pdftoppm      string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract     string // binary name or absolute path; if empty -> "tesseract"
	TesseractLang string // default "eng+rus+chi_sim"
	DPI           int    // rasterization DPI for scanned PDFs, default 300
	MaxPages      int    // 0 = no limit

	// MinTextLayerRunes is the shortest PDF text layer accepted before
	// falling back to OCR.
	MinTextLayerRunes int
}

type Result struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF | IMAGE | TXT | XLSX
	Method     string // "pdf-text" | "pdf-ocr" | "image-ocr" | "plain-text" | "xlsx"
	Duration   time.Duration
	Warnings   []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng+rus+chi_sim"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.MinTextLayerRunes <= 0 {
		cfg.MinTextLayerRunes = 20
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	format := constants.MapExtToFormat(ext)
	e.logger.Debug("textsource.extract.start", "path", path, "ext", ext, "format", format)

	var (
		res Result
		err error
	)
	switch format {
	case constants.PDF:
		res, err = e.extractPDF(ctx, path)
	case constants.IMAGE:
		res, err = e.extractImage(ctx, path)
	case constants.TXT:
		res, err = e.extractPlain(path)
	case constants.XLSX:
		res, err = e.extractXLSX(path)
	default:
		return Result{}, common.NewAppError("UNSUPPORTED_FORMAT", fmt.Sprintf("extension %q", ext), common.ErrUnsupportedFormat)
	}
	res.SourceType = format
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Error("textsource.extract.failed", "path", path, "method", res.Method, "error", err)
		return res, err
	}
	e.logger.Info("textsource.extract.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"text_len", len(res.Text),
		"warnings", len(res.Warnings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
