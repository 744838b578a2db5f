package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm/provider"
	"github.com/joseph-ayodele/invoice-extractor/internal/textsource"
)

// llm sends one document to the configured AI collaborator several times and
// reports how stable the answers are.
func main() {
	_ = godotenv.Load()
	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stdout, true, cfg.LogLevel)
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		logger.Error("usage: llm <path> [times]")
		os.Exit(2)
	}
	path := os.Args[1]
	times := 3
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}
	if cfg.AI.Provider == "" {
		logger.Error("AI_PROVIDER env var is required (openai or remote)")
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	src, err := textsource.NewExtractor(textsource.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
	}, logger).Extract(ctx, path)
	if err != nil {
		logger.Error("text extraction failed", "path", path, "error", err)
		os.Exit(1)
	}

	ai, err := provider.New(cfg.AI, logger)
	if err != nil {
		logger.Error("build AI collaborator", "error", err)
		os.Exit(2)
	}

	counts := map[int]int{}
	var lastRaw []byte
	for i := 1; i <= times; i++ {
		start := time.Now()
		fields, raw, err := ai.ExtractInvoice(ctx, llm.ExtractRequest{Text: src.Text, FilenameHint: filepath.Base(path)})
		if err != nil {
			logger.Error("llm run failed", "run", i, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
			continue
		}
		counts[len(fields.Items)]++
		lastRaw = raw
		logger.Info("llm run ok",
			"run", i,
			"items", len(fields.Items),
			"has_bank_info", fields.BankInfo != nil,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}

	logger.Info("llm runs complete", "runs", times, "item_count_histogram", fmt.Sprint(counts))
	if lastRaw != nil {
		fmt.Println(string(lastRaw))
	}
}
