// Package search orchestrates phrase-aware semantic retrieval: query
// enhancement, embedding, KNN candidate fetch, metadata filtering, ranking.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/compcontext/notedex/internal/domain"
	"github.com/compcontext/notedex/internal/domain/query"
	"github.com/compcontext/notedex/internal/domain/search/filter"
	"github.com/compcontext/notedex/internal/domain/search/result"
)

// Config holds retrieval tuning knobs.
type Config struct {
	// CandidatePool is the KNN candidate count fetched before filtering.
	CandidatePool int
	// MaxResults caps the final result list.
	MaxResults int
}

// Service handles catalog search requests.
type Service struct {
	repo   Repository
	embed  Embedder
	cfg    Config
	logger *zap.Logger
}

// New creates a search service.
func New(repo Repository, embed Embedder, cfg Config, logger *zap.Logger) *Service {
	if cfg.CandidatePool <= 0 {
		cfg.CandidatePool = 100
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = 10
	}
	return &Service{repo: repo, embed: embed, cfg: cfg, logger: logger}
}

// Search runs the full retrieval flow for one query. Candidates come from a
// wide KNN pool so metadata filtering can narrow without starving results;
// an empty final list is a valid outcome, not an error.
func (s *Service) Search(ctx context.Context, rawQuery string, f filter.Filter) ([]result.Result, error) {
	if strings.TrimSpace(rawQuery) == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidQuery)
	}

	enhanced := query.Enhance(rawQuery)

	embResult, err := s.embed.Embed(ctx, enhanced)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	candidates, err := s.repo.SearchKNN(ctx, embResult.Embedding, s.cfg.CandidatePool)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	results := narrow(candidates, f)

	// Candidates arrive ranked; the stable sort only settles score ties
	// introduced by quantization, breaking them on ID for determinism.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})

	if len(results) > s.cfg.MaxResults {
		results = results[:s.cfg.MaxResults]
	}

	s.logger.Debug("Search completed",
		zap.Int("candidates", len(candidates)),
		zap.Int("results", len(results)),
		zap.Int("phrases", len(query.Parse(rawQuery).Phrases)),
	)

	return results, nil
}

// narrow keeps candidates matching every active filter criterion,
// preserving their incoming rank order.
func narrow(candidates []result.Result, f filter.Filter) []result.Result {
	if f.IsEmpty() {
		return candidates
	}
	kept := make([]result.Result, 0, len(candidates))
	for _, c := range candidates {
		if f.Matches(c.Language, c.CourseLevel, c.SequencePosition, c.FileType, c.Context) {
			kept = append(kept, c)
		}
	}
	return kept
}
