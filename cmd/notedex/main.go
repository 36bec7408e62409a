package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/compcontext/notedex/internal/config"
	"github.com/compcontext/notedex/internal/db"
	dbRedis "github.com/compcontext/notedex/internal/db/redis"
	"github.com/compcontext/notedex/internal/domain"
	logpkg "github.com/compcontext/notedex/internal/logger"
	"github.com/compcontext/notedex/internal/metrics"
	"github.com/compcontext/notedex/internal/repository/embcache"
	resourcerepo "github.com/compcontext/notedex/internal/repository/resource"
	searchrepo "github.com/compcontext/notedex/internal/repository/search"
	"github.com/compcontext/notedex/internal/retry"
	"github.com/compcontext/notedex/internal/transport/httpapi"
	openaiEmb "github.com/compcontext/notedex/internal/transport/openai"
	cataloguc "github.com/compcontext/notedex/internal/usecase/catalog"
	embeddinguc "github.com/compcontext/notedex/internal/usecase/embedding"
	healthuc "github.com/compcontext/notedex/internal/usecase/health"
	searchuc "github.com/compcontext/notedex/internal/usecase/search"
	"github.com/compcontext/notedex/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting notedex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register embedding metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()

	embedder := buildEmbedder(cfg.Embedding, store, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	resourceRepo := resourcerepo.New(store)
	if err := resourceRepo.EnsureIndex(ctx, cfg.Embedding.Dimensions, resourcerepo.HNSWConfig{
		M:           cfg.Search.HNSWM,
		EFConstruct: cfg.Search.HNSWEFConstruct,
	}); err != nil {
		logger.Fatal("Failed to ensure search index", zap.Error(err))
	}
	searchRepo := searchrepo.New(store)

	searchSvc := searchuc.New(searchRepo, embedder, searchuc.Config{
		CandidatePool: cfg.Search.CandidatePool,
		MaxResults:    cfg.Search.MaxResults,
	}, logger)
	catalogSvc := cataloguc.New(resourceRepo, logger)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder))

	server := httpapi.NewServer(searchSvc, catalogSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(httpapi.RequestLogger(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Retrying.
func buildEmbedder(embCfg config.EmbeddingConfig, store db.Store, logger *zap.Logger) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     embCfg.APIKey,
		BaseURL:    embCfg.BaseURL,
		Model:      embCfg.Model,
		Dimensions: embCfg.Dimensions,
		Timeout:    time.Duration(embCfg.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if store != nil {
		ttl := time.Duration(embCfg.CacheTTLHours) * time.Hour
		embedder = embcache.New(base, store, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	policy := retry.Policy{
		MaxAttempts: embCfg.Retry.MaxAttempts,
		BaseDelay:   time.Duration(embCfg.Retry.BaseDelayMS) * time.Millisecond,
		Multiplier:  embCfg.Retry.Multiplier,
		MaxDelay:    time.Duration(embCfg.Retry.MaxDelaySec) * time.Second,
	}
	return embeddinguc.NewRetryingEmbedder(embedder, policy, openaiEmb.IsRetryable, embCfg.Model, logger)
}

// embeddingHealthChecker unwraps the decorator chain to reach the provider health check.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
