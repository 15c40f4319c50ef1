package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/infradyn/docextract/internal/common"
	"github.com/infradyn/docextract/internal/extract"
	"github.com/infradyn/docextract/internal/llm"
	"github.com/infradyn/docextract/internal/llm/openai"
	"github.com/infradyn/docextract/internal/ocr"
	"github.com/infradyn/docextract/internal/pipeline"
	"github.com/infradyn/docextract/internal/server"
	"github.com/infradyn/docextract/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config.invalid", "error", err)
		os.Exit(1)
	}

	store := storage.NewHTTPStore(cfg.Storage, logger)
	resolver := storage.NewResolver(store, nil, cfg.Storage.DefaultBucket, logger)

	ocrClient := ocr.NewClient(ocr.ClientConfig{
		BaseURL: cfg.OCR.Endpoint,
		APIKey:  cfg.OCR.APIKey,
		Timeout: cfg.OCR.Timeout,
	}, logger)
	ocrService := ocr.NewService(ocrClient, ocr.Config{
		PollInterval: cfg.OCR.PollInterval,
		MaxAttempts:  cfg.OCR.MaxAttempts,
	}, logger)

	chat := openai.NewClient(openai.Config{
		BaseURL:     cfg.LLM.BaseURL,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		Temperature: float64(cfg.LLM.Temperature),
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	parser, err := llm.NewParser(chat, logger)
	if err != nil {
		logger.Error("llm.parser_init_error", "error", err)
		os.Exit(1)
	}

	extractor := extract.NewExtractor(ocrService, logger)
	pipe := pipeline.New(resolver, extractor, parser, logger)
	handler := server.NewHandler(pipe, cfg.Server.MaxUploadSize, logger)

	srv := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server.listening", "addr", cfg.Server.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server.listen_error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("server.shutting_down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server.shutdown_error", "error", err)
	}
	logger.Info("server.stopped")
}
