package ingest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/compcontext/notedex/internal/domain"
	"github.com/compcontext/notedex/internal/domain/resource"
	"github.com/compcontext/notedex/internal/metrics"
)

// fetcher downloads raw notebook bytes for a resource URL.
type fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// extractor derives catalog metadata from notebook text.
type extractor interface {
	Extract(ctx context.Context, content string) (resource.Metadata, error)
}

// repository persists ingested resources.
type repository interface {
	Upsert(ctx context.Context, res *resource.Resource) (bool, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// Pipeline ingests notebook URLs concurrently: fetch, flatten, extract
// metadata, embed, store. One worker pool bounds all external calls.
type Pipeline struct {
	fetch   fetcher
	extract extractor
	embed   domain.Embedder
	repo    repository

	pool            *ants.Pool
	maxContentChars int
	skipExisting    bool
	logger          *zap.Logger
}

// PipelineConfig holds the ingestion pipeline settings.
type PipelineConfig struct {
	Workers         int
	MaxContentChars int
	// SkipExisting leaves already-stored resources untouched instead of
	// re-extracting and re-embedding them.
	SkipExisting bool
}

// NewPipeline creates an ingestion pipeline with its own worker pool.
// Call Release when done.
func NewPipeline(
	f fetcher, ex extractor, emb domain.Embedder, repo repository,
	cfg PipelineConfig, logger *zap.Logger,
) (*Pipeline, error) {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	return &Pipeline{
		fetch:           f,
		extract:         ex,
		embed:           emb,
		repo:            repo,
		pool:            pool,
		maxContentChars: cfg.MaxContentChars,
		skipExisting:    cfg.SkipExisting,
		logger:          logger,
	}, nil
}

// Release shuts down the worker pool. The pipeline must not be used after.
func (p *Pipeline) Release() {
	p.pool.Release()
}

// Stats summarizes one ingestion run.
type Stats struct {
	Processed int
	Created   int
	Updated   int
	Skipped   int
	Failed    int
}

// Run ingests all URLs and blocks until every worker finishes. A failing
// resource is logged and counted, never fatal to the run.
func (p *Pipeline) Run(ctx context.Context, urls []string) Stats {
	var wg sync.WaitGroup
	var created, updated, skipped, failed atomic.Int64

	for _, rawURL := range urls {
		rawURL := rawURL
		wg.Add(1)

		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			outcome, err := p.ingestOne(ctx, rawURL)
			switch {
			case err != nil:
				failed.Add(1)
				p.logger.Error("Resource ingestion failed",
					zap.String("url", rawURL),
					zap.Error(err),
				)
			case outcome == outcomeSkipped:
				skipped.Add(1)
			case outcome == outcomeCreated:
				created.Add(1)
			default:
				updated.Add(1)
			}
		})
		if submitErr != nil {
			wg.Done()
			failed.Add(1)
			p.logger.Error("Worker submit failed", zap.String("url", rawURL), zap.Error(submitErr))
		}
	}

	wg.Wait()

	return Stats{
		Processed: len(urls),
		Created:   int(created.Load()),
		Updated:   int(updated.Load()),
		Skipped:   int(skipped.Load()),
		Failed:    int(failed.Load()),
	}
}

type outcome int

const (
	outcomeCreated outcome = iota
	outcomeUpdated
	outcomeSkipped
)

func (p *Pipeline) ingestOne(ctx context.Context, rawURL string) (outcome, error) {
	source := string(Classify(rawURL))
	id := ResourceID(rawURL)

	if p.skipExisting {
		exists, err := p.repo.Exists(ctx, id)
		if err != nil {
			metrics.IngestResourcesTotal.WithLabelValues(source, "store_error").Inc()
			return 0, fmt.Errorf("check exists: %w", err)
		}
		if exists {
			metrics.IngestResourcesTotal.WithLabelValues(source, "skipped").Inc()
			return outcomeSkipped, nil
		}
	}

	data, err := p.fetch.Fetch(ctx, rawURL)
	if err != nil {
		metrics.IngestResourcesTotal.WithLabelValues(source, "fetch_error").Inc()
		return 0, fmt.Errorf("fetch: %w", err)
	}

	content, err := NotebookText(data, p.maxContentChars)
	if err != nil {
		metrics.IngestResourcesTotal.WithLabelValues(source, "fetch_error").Inc()
		return 0, fmt.Errorf("flatten notebook: %w", err)
	}

	md, err := p.extract.Extract(ctx, content)
	if err != nil {
		metrics.IngestResourcesTotal.WithLabelValues(source, "extract_error").Inc()
		return 0, fmt.Errorf("extract metadata: %w", err)
	}

	embResult, err := p.embed.Embed(ctx, content)
	if err != nil {
		metrics.IngestResourcesTotal.WithLabelValues(source, "embed_error").Inc()
		return 0, fmt.Errorf("embed content: %w", err)
	}

	res := resource.Resource{
		ID:      id,
		URL:     rawURL,
		Content: content,
		Vector:  embResult.Embedding,
		SavedAt: time.Now().UTC(),
	}
	md.Apply(&res)

	createdNow, err := p.repo.Upsert(ctx, &res)
	if err != nil {
		metrics.IngestResourcesTotal.WithLabelValues(source, "store_error").Inc()
		return 0, fmt.Errorf("store resource: %w", err)
	}

	metrics.IngestResourcesTotal.WithLabelValues(source, "ok").Inc()
	p.logger.Info("Resource ingested",
		zap.String("id", res.ID),
		zap.String("url", rawURL),
		zap.String("language", res.Language),
		zap.Bool("created", createdNow),
	)

	if createdNow {
		return outcomeCreated, nil
	}
	return outcomeUpdated, nil
}
