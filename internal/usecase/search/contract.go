package search

import (
	"context"

	"github.com/compcontext/notedex/internal/domain"
	"github.com/compcontext/notedex/internal/domain/search/result"
)

// Repository provides KNN candidates from the catalog index.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, k int) ([]result.Result, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
