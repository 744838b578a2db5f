package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/extraction"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm/provider"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
	"github.com/joseph-ayodele/invoice-extractor/internal/textsource"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type fileResult struct {
	Path   string                   `json:"path"`
	Record *entity.ExtractionRecord `json:"record,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

func main() {
	var (
		file    = flag.String("file", "", "single document to extract")
		dir     = flag.String("dir", "", "directory of documents to extract")
		workers = flag.Int("workers", 4, "parallel extractions for -dir")
		dbPath  = flag.String("db", "", "store results in this database (SQLite path or postgres:// URL)")
		xlsxOut = flag.String("xlsx", "", "also write the results to this XLSX workbook")
		noAI    = flag.Bool("no-ai", false, "disable the AI collaborator even when configured")
	)
	flag.Parse()

	if (*file == "") == (*dir == "") {
		printError("Error: exactly one of --file or --dir is required\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		printError("Warning: .env: %v\n", err)
	}
	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stderr, true, cfg.LogLevel)
	slog.SetDefault(logger)
	if *noAI {
		cfg.AI.Provider = ""
	}
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repo repository.ExtractionRepository
	if *dbPath != "" {
		dbCfg := cfg.Database
		dbCfg.DSN = *dbPath
		store, err := repository.Open(ctx, dbCfg, logger)
		if err != nil {
			printError("Error: open database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			printError("Error: migrate database: %v\n", err)
			os.Exit(1)
		}
		repo = repository.NewExtractionRepository(store, logger)
	}

	ai, err := provider.New(cfg.AI, logger)
	if err != nil {
		printError("Error: %v\n", err)
		os.Exit(2)
	}
	proc := pipeline.NewProcessor(
		textsource.NewExtractor(textsource.Config{
			Pdftoppm:      cfg.OCR.Pdftoppm,
			Tesseract:     cfg.OCR.Tesseract,
			TesseractLang: cfg.OCR.TesseractLang,
			DPI:           cfg.OCR.DPI,
		}, logger),
		extraction.NewEngine(ai, extraction.Config{
			MinAITextLength: cfg.Extraction.MinAITextLength,
			AITimeout:       cfg.Extraction.AITimeout,
		}, logger),
		repo,
		logger,
	)

	var results []fileResult
	if *file != "" {
		rec, err := proc.ProcessFile(ctx, *file)
		res := fileResult{Path: *file, Record: rec}
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	} else {
		results, err = processDir(ctx, proc, *dir, *workers, logger)
		if err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(results); err != nil {
		printError("Error: encode results: %v\n", err)
		os.Exit(1)
	}

	if *xlsxOut != "" {
		if err := writeWorkbook(*xlsxOut, results, logger); err != nil {
			printError("Error: %v\n", err)
			os.Exit(1)
		}
		printError("Wrote %s\n", *xlsxOut)
	}

	for _, r := range results {
		if r.Error != "" {
			os.Exit(3)
		}
	}
}

func processDir(ctx context.Context, proc *pipeline.Processor, dir string, workers int, logger *slog.Logger) ([]fileResult, error) {
	files, stats, err := ingest.ScanDirectory(dir, true)
	if err != nil {
		return nil, err
	}
	logger.Info("cli.scan.ok", "dir", dir, "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)
	if len(files) == 0 {
		printError("No supported documents found in %s\n", dir)
		return nil, nil
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Extracting invoices"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)

	var mu sync.Mutex
	results := make([]fileResult, 0, len(files))
	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(workers),
		async.WithQueueSize(len(files)),
		async.WithProcessTimeout(3*time.Minute),
		async.WithOnDone(func(o async.Outcome) {
			res := fileResult{Path: o.Job.Path, Record: o.Record}
			if o.Status == constants.JobStatusFailed {
				res.Error = o.Err.Error()
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			_ = bar.Add(1)
		}),
	)
	for _, f := range files {
		if err := queue.Enqueue(ctx, async.Job{Path: f}); err != nil {
			logger.Warn("cli.enqueue.failed", "path", f, "error", err)
		}
	}
	queue.Shutdown(ctx)
	_ = bar.Finish()
	printError("\n")

	mu.Lock()
	defer mu.Unlock()
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

func writeWorkbook(path string, results []fileResult, logger *slog.Logger) error {
	recs := make([]*entity.ExtractionRecord, 0, len(results))
	for _, r := range results {
		if r.Record != nil {
			recs = append(recs, r.Record)
		}
	}
	data, err := export.NewService(nil, logger).ExportXLSX(recs...)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
