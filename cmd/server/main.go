package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/exstem-paper/internal/config"
	"github.com/stemsi/exstem-paper/internal/database"
	"github.com/stemsi/exstem-paper/internal/handler"
	"github.com/stemsi/exstem-paper/internal/logger"
	"github.com/stemsi/exstem-paper/internal/metrics"
	"github.com/stemsi/exstem-paper/internal/middleware"
	"github.com/stemsi/exstem-paper/internal/paper"
	"github.com/stemsi/exstem-paper/internal/repository"
	"github.com/stemsi/exstem-paper/internal/router"
	"github.com/stemsi/exstem-paper/internal/service"
	"github.com/stemsi/exstem-paper/internal/validator"
	"github.com/stemsi/exstem-paper/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExStem Paper")

	// ─── Initialize Validator & Metrics ────────────────────────────────
	validator.Setup()
	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Fonts ────────────────────────────────────────────────────
	fonts, err := paper.LoadFonts(cfg.PDFFontPath, cfg.PDFFontBoldPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load PDF fonts")
	}

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	examRepo := repository.NewExamRepository(pool)
	qbankRepo := repository.NewQuestionBankRepository(pool)
	renderStore := repository.NewRenderStore(rdb)

	// ─── Initialize Services ──────────────────────────────────────────
	verifier := service.NewTokenVerifier(cfg.JWTSecret)
	examService := service.NewExamService(examRepo, renderStore, cfg.WatermarkText, log)
	qbankService := service.NewQuestionBankService(qbankRepo)
	renderService := service.NewRenderService(examRepo, renderStore, paper.NewRenderer(fonts).WithWatermark(cfg.WatermarkText), cfg.RenderCacheTTL, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Exam:     handler.NewExamHandler(examService, qbankService, log),
		Render:   handler.NewRenderHandler(renderService, log),
		QBank:    handler.NewQBankHandler(qbankService, log),
		EditorWS: handler.NewEditorWSHandler(examService, qbankService, renderStore, log, cfg.AllowedOrigins),
		System: handler.NewSystemHandler(map[string]handler.Pinger{
			"postgres": pool,
			"redis": handler.PingFunc(func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			}),
		}, renderStore, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := make(chan struct{})

	renderWorker := worker.NewRenderWorker(renderStore, renderService, log)
	go func() {
		renderWorker.Start(workerCtx)
		close(workerDone)
	}()

	downloadLimiter := middleware.NewRateLimiter(cfg.DownloadRatePerMinute, time.Minute)
	go downloadLimiter.Run(workerCtx)

	// ─── Re-queue Published Exams ─────────────────────────────────────
	// PDFs of published exams are rendered in the background after a
	// restart so the first downloads hit a warm cache.
	if ids, err := examRepo.ListPublishedIDs(ctx); err != nil {
		log.Warn().Err(err).Msg("Cache prewarm failed")
	} else {
		for _, id := range ids {
			if err := renderStore.EnqueueRender(ctx, id); err != nil {
				log.Warn().Err(err).Msg("Cache prewarm failed")
				break
			}
		}
		log.Info().Int("exams", len(ids)).Msg("Queued PDF prewarm")
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(verifier, downloadLimiter, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the render queue to drain.
	workerCancel()
	<-workerDone

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
