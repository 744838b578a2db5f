package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/joseph-ayodele/invoice-extractor/internal/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/extraction"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
	"github.com/joseph-ayodele/invoice-extractor/internal/llm/provider"
	"github.com/joseph-ayodele/invoice-extractor/internal/pipeline"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
	"github.com/joseph-ayodele/invoice-extractor/internal/server"
	"github.com/joseph-ayodele/invoice-extractor/internal/textsource"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("dotenv.load_failed", "error", err)
	}
	cfg := common.LoadConfig()
	logger := common.NewLogger(os.Stdout, false, cfg.LogLevel)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var repo repository.ExtractionRepository
	var exporter *export.Service
	if cfg.Database.DSN != "" {
		store, err := repository.Open(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		if err := store.HealthCheck(ctx, 5*time.Second); err != nil {
			logger.Error("failed to ping database", "error", err)
			os.Exit(1)
		}
		if err := store.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		repo = repository.NewExtractionRepository(store, logger)
		exporter = export.NewService(repo, logger)
	} else {
		logger.Info("DB_URL not set, extractions will not be persisted")
	}

	ai, err := provider.New(cfg.AI, logger)
	if err != nil {
		logger.Error("failed to build AI collaborator", "error", err)
		os.Exit(2)
	}
	engine := extraction.NewEngine(ai, extraction.Config{
		MinAITextLength: cfg.Extraction.MinAITextLength,
		AITimeout:       cfg.Extraction.AITimeout,
	}, logger)
	src := textsource.NewExtractor(textsource.Config{
		Pdftoppm:      cfg.OCR.Pdftoppm,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		DPI:           cfg.OCR.DPI,
	}, logger)
	proc := pipeline.NewProcessor(src, engine, repo, logger)

	var queue *async.ProcessorQueue
	if cfg.Server.WatchDir != "" {
		queue = async.NewProcessorQueue(proc, logger,
			async.WithWorkers(cfg.Server.QueueWorkers),
			async.WithQueueSize(512),
			async.WithProcessTimeout(3*time.Minute),
		)
		events, _, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       []string{cfg.Server.WatchDir},
			InitialScan: true,
			Debounce:    500 * time.Millisecond,
			SkipHidden:  true,
		}, logger)
		if err != nil {
			logger.Error("failed to watch directory", "dir", cfg.Server.WatchDir, "error", err)
			os.Exit(1)
		}
		go func() {
			for path := range events {
				if err := queue.Enqueue(ctx, async.Job{Path: path}); err != nil {
					logger.Warn("watch.enqueue_failed", "path", path, "error", err)
				}
			}
		}()
		logger.Info("watching directory", "dir", cfg.Server.WatchDir, "workers", cfg.Server.QueueWorkers)
	}

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
		os.Exit(1)
	}
	grpcServer, healthServer := server.NewGRPCServer(server.NewExtractionService(proc, repo, exporter, logger), logger)

	logger.Info("invoiced listening", "addr", cfg.Server.GRPCAddr, "ai_provider", cfg.AI.Provider, "persist", repo != nil)
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()
	grpcServer.GracefulStop()
	if queue != nil {
		drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		queue.Shutdown(drainCtx)
	}
}
