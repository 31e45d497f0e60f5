package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/time/rate"

	"github.com/docuchat/backend/internal/api/handlers"
	"github.com/docuchat/backend/internal/api/middleware"
	"github.com/docuchat/backend/internal/chunker"
	"github.com/docuchat/backend/internal/config"
	"github.com/docuchat/backend/internal/extract"
	"github.com/docuchat/backend/internal/index"
	"github.com/docuchat/backend/internal/jobs"
	"github.com/docuchat/backend/internal/observability"
	"github.com/docuchat/backend/internal/openai"
	"github.com/docuchat/backend/internal/qagen"
	"github.com/docuchat/backend/internal/repository"
	"github.com/docuchat/backend/internal/service"
	"github.com/docuchat/backend/internal/storage"
	"github.com/docuchat/backend/internal/workers"
	"github.com/docuchat/backend/pkg/database"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Configure slog with the log level from config
	setupLogging(cfg.LogLevel)

	// Initialize database connection
	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Metrics are exposed through the Prometheus registry behind GET /metrics
	meterProvider, err := observability.NewMeterProvider()
	if err != nil {
		slog.Error("Failed to initialize metrics", "error", err)
		os.Exit(1)
	}

	meter := meterProvider.Meter("docuchat")

	ingestionMetrics, err := observability.NewIngestionMetrics(meter)
	if err != nil {
		slog.Error("Failed to create ingestion metrics", "error", err)
		os.Exit(1)
	}

	chatMetrics, err := observability.NewChatMetrics(meter)
	if err != nil {
		slog.Error("Failed to create chat metrics", "error", err)
		os.Exit(1)
	}

	// OpenAI client for embeddings and completions
	openaiClient := openai.NewClient(cfg.OpenAIAPIKey,
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
		openai.WithCompletionModel(cfg.CompletionModel),
		openai.WithDimensions(cfg.EmbeddingDimensions),
		openai.WithRequestTimeout(cfg.RequestTimeout),
	)

	// Bulk ingestion shares one token bucket across chunk and QA embeddings
	rateLimiter := rate.NewLimiter(rate.Limit(cfg.EmbeddingRateLimit), 1)
	limitedEmbedder := service.NewRateLimitedEmbedder(openaiClient, rateLimiter)

	fileStore, err := storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		slog.Error("Failed to initialize upload storage", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	usersRepo := repository.NewUsersRepository(db)
	documentsRepo := repository.NewDocumentsRepository(db)
	messagesRepo := repository.NewMessagesRepository(db)

	// Ingestion pipeline
	qaGenerator := qagen.New(openaiClient, limitedEmbedder, cfg.QAChunkSampleCap, cfg.QAPairCount, slog.Default())
	ingestionService := service.NewIngestionService(
		documentsRepo,
		extract.NewPDFExtractor(),
		chunker.New(cfg.ChunkSize, cfg.ChunkOverlap, cfg.ChunkMinLength),
		limitedEmbedder,
		qaGenerator,
		cfg.EmbeddingModel,
		ingestionMetrics,
		slog.Default(),
	)

	riverClient, err := initRiver(ctx, db, cfg, ingestionService, ingestionMetrics)
	if err != nil {
		slog.Error("Failed to initialize River job queue", "error", err)
		os.Exit(1)
	}

	jobInserter := jobs.NewRiverJobInserter(riverClient)

	// Initialize services
	usersService := service.NewUsersService(usersRepo, []byte(cfg.JWTSecret), cfg.JWTTTL, slog.Default())
	documentsService := service.NewDocumentsService(documentsRepo, fileStore, jobInserter, slog.Default())

	retriever := index.NewRetriever(cfg.TopK, cfg.QAScoreMin, cfg.ChunkScoreMin)

	chatService, err := service.NewChatService(
		documentsRepo, messagesRepo, openaiClient, openaiClient, retriever, chatMetrics, slog.Default(),
	)
	if err != nil {
		slog.Error("Failed to create chat service", "error", err)
		os.Exit(1)
	}

	authHandler := handlers.NewAuthHandler(usersService)
	documentsHandler := handlers.NewDocumentsHandler(documentsService)
	chatHandler := handlers.NewChatHandler(chatService)
	healthHandler := handlers.NewHealthHandler()

	// Set up public endpoints (no authentication required)
	publicMux := http.NewServeMux()
	publicMux.HandleFunc("GET /health", healthHandler.Check)
	publicMux.Handle("GET /metrics", promhttp.Handler())

	authGuard := middleware.Auth([]byte(cfg.JWTSecret))

	// Auth endpoints: signup/login are public, profile requires a token
	authMux := http.NewServeMux()
	authMux.HandleFunc("POST /v1/auth/signup", authHandler.Signup)
	authMux.HandleFunc("POST /v1/auth/login", authHandler.Login)
	authMux.Handle("GET /v1/auth/me", authGuard(http.HandlerFunc(authHandler.Me)))

	// Set up protected endpoints (authentication required)
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("POST /v1/documents", documentsHandler.Upload)
	protectedMux.HandleFunc("GET /v1/documents", documentsHandler.Status)
	protectedMux.HandleFunc("POST /v1/questions", chatHandler.Ask)
	protectedMux.HandleFunc("GET /v1/messages", chatHandler.History)

	var protectedHandler http.Handler = protectedMux
	protectedHandler = middleware.MaxBody(cfg.MaxUploadBytes)(protectedHandler)
	protectedHandler = authGuard(protectedHandler)

	// Combine the handlers; the longer /v1/auth/ prefix wins over /v1/
	mainMux := http.NewServeMux()
	mainMux.Handle("/v1/auth/", authMux)
	mainMux.Handle("/v1/", protectedHandler)
	mainMux.Handle("/", publicMux)

	// Order matters: CORS must wrap Auth so OPTIONS preflight requests bypass authentication
	handler := middleware.CORS(cfg.CORSAllowedOrigin)(mainMux)
	handler = middleware.Logging(handler)
	handler = middleware.RequestID(handler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Starting server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 1. Stop accepting new HTTP requests
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// 2. Stop River (waits for in-flight jobs to complete)
	slog.Info("Stopping River job queue...")

	if err := riverClient.Stop(shutdownCtx); err != nil {
		slog.Error("River forced to shutdown", "error", err)
	}

	// 3. Flush metrics
	if err := shutdownMetrics(shutdownCtx, meterProvider); err != nil {
		slog.Error("Metrics shutdown failed", "error", err)
	}

	slog.Info("Server exited")
}

// setupLogging configures slog with the specified log level and a handler that
// injects the request ID from context.
func setupLogging(level string) {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	inner := slog.NewTextHandler(os.Stdout, opts)
	slog.SetDefault(slog.New(observability.NewRequestContextHandler(inner)))
}

// shutdownMetrics flushes the meter provider during shutdown.
func shutdownMetrics(ctx context.Context, provider *sdkmetric.MeterProvider) error {
	return observability.ShutdownMeterProvider(ctx, provider)
}

// initRiver initializes the River job queue client and workers
func initRiver(
	ctx context.Context,
	db *pgxpool.Pool,
	cfg *config.Config,
	ingestionService *service.IngestionService,
	metrics observability.IngestionMetrics,
) (*river.Client[pgx.Tx], error) {
	ingestWorker := workers.NewDocumentIngestWorker(ingestionService, metrics)

	riverWorkers := river.NewWorkers()
	river.AddWorker(riverWorkers, ingestWorker)

	riverClient, err := river.NewClient(riverpgxv5.New(db), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: cfg.IngestMaxConcurrent},
		},
		Workers:      riverWorkers,
		ErrorHandler: &jobs.ErrorHandler{},
		MaxAttempts:  cfg.IngestMaxAttempts,
	})
	if err != nil {
		return nil, err
	}

	// Start River (begins processing jobs)
	if err := riverClient.Start(ctx); err != nil {
		return nil, err
	}

	return riverClient, nil
}
