// Command notedex-ingest loads notebook URLs into the catalog: fetch,
// flatten, extract metadata, embed, store.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/compcontext/notedex/internal/config"
	"github.com/compcontext/notedex/internal/db"
	dbRedis "github.com/compcontext/notedex/internal/db/redis"
	"github.com/compcontext/notedex/internal/domain"
	"github.com/compcontext/notedex/internal/ingest"
	logpkg "github.com/compcontext/notedex/internal/logger"
	"github.com/compcontext/notedex/internal/metrics"
	"github.com/compcontext/notedex/internal/repository/embcache"
	resourcerepo "github.com/compcontext/notedex/internal/repository/resource"
	"github.com/compcontext/notedex/internal/retry"
	openaiEmb "github.com/compcontext/notedex/internal/transport/openai"
	embeddinguc "github.com/compcontext/notedex/internal/usecase/embedding"
	"github.com/compcontext/notedex/internal/version"
)

func main() {
	app := &cli.App{
		Name:    "notedex-ingest",
		Usage:   "ingest educational notebooks into the catalog",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "sources",
				Aliases: []string{"s"},
				Usage:   "path to a newline-separated file of notebook URLs (default: ingest.sources_file from config)",
			},
			&cli.BoolFlag{
				Name:  "skip-existing",
				Usage: "leave already-stored resources untouched",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "override the configured worker count",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	sourcesPath := c.String("sources")
	if sourcesPath == "" {
		sourcesPath = cfg.Ingest.SourcesFile
	}
	if sourcesPath == "" {
		return fmt.Errorf("no sources file: pass --sources or set ingest.sources_file")
	}

	urls, err := ingest.LoadSources(sourcesPath)
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}
	if len(urls) == 0 {
		logger.Warn("Sources file contains no URLs", zap.String("path", sourcesPath))
		return nil
	}

	logger.Info("Starting ingestion",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("sources", sourcesPath),
		zap.Int("urls", len(urls)),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create database store: %w", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterIngestMetrics()

	resourceRepo := resourcerepo.New(store)
	if err := resourceRepo.EnsureIndex(ctx, cfg.Embedding.Dimensions, resourcerepo.HNSWConfig{
		M:           cfg.Search.HNSWM,
		EFConstruct: cfg.Search.HNSWEFConstruct,
	}); err != nil {
		return fmt.Errorf("ensure search index: %w", err)
	}

	fetcher := ingest.NewFetcher(
		time.Duration(cfg.Ingest.FetchTimeoutSec)*time.Second,
		cfg.Ingest.ColabExportURL,
		logger,
	)
	extractor := openaiEmb.NewExtractor(&openaiEmb.ExtractorConfig{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.ChatModel,
		Timeout: time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:  logger,
	})
	embedder := buildEmbedder(cfg.Embedding, store, logger)

	workers := cfg.Ingest.Workers
	if c.Int("workers") > 0 {
		workers = c.Int("workers")
	}

	pipeline, err := ingest.NewPipeline(fetcher, extractor, embedder, resourceRepo, ingest.PipelineConfig{
		Workers:         workers,
		MaxContentChars: cfg.Ingest.MaxContentChars,
		SkipExisting:    c.Bool("skip-existing"),
	}, logger)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}
	defer pipeline.Release()

	start := time.Now()
	stats := pipeline.Run(ctx, urls)

	logger.Info("Ingestion finished",
		zap.Int("processed", stats.Processed),
		zap.Int("created", stats.Created),
		zap.Int("updated", stats.Updated),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Duration("elapsed", time.Since(start)),
	)

	fmt.Printf("Processed %d resources: %d created, %d updated, %d skipped, %d failed\n",
		stats.Processed, stats.Created, stats.Updated, stats.Skipped, stats.Failed)

	if stats.Failed == stats.Processed && stats.Processed > 0 {
		return fmt.Errorf("all %d resources failed", stats.Failed)
	}
	return nil
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

	ttl := time.Duration(embCfg.CacheTTLHours) * time.Hour
	cached := embcache.New(base, store, ttl, metrics.EmbeddingCacheTotal, logger)

	policy := retry.Policy{
		MaxAttempts: embCfg.Retry.MaxAttempts,
		BaseDelay:   time.Duration(embCfg.Retry.BaseDelayMS) * time.Millisecond,
		Multiplier:  embCfg.Retry.Multiplier,
		MaxDelay:    time.Duration(embCfg.Retry.MaxDelaySec) * time.Second,
	}
	return embeddinguc.NewRetryingEmbedder(cached, policy, openaiEmb.IsRetryable, embCfg.Model, logger)
}
