// Package embedding decorates the embedding provider with usecase-level
// concerns: retries on transient failures and request logging.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/compcontext/notedex/internal/domain"
	"github.com/compcontext/notedex/internal/retry"
)

// RetryingEmbedder wraps an Embedder with exponential-backoff retries.
type RetryingEmbedder struct {
	inner     domain.Embedder
	policy    retry.Policy
	retryable func(error) bool
	model     string
	logger    *zap.Logger
}

// NewRetryingEmbedder wraps an embedder with a retry policy. retryable
// decides which errors are worth another attempt; nil retries everything.
func NewRetryingEmbedder(
	inner domain.Embedder, policy retry.Policy,
	retryable func(error) bool, model string, logger *zap.Logger,
) *RetryingEmbedder {
	return &RetryingEmbedder{
		inner:     inner,
		policy:    policy,
		retryable: retryable,
		model:     model,
		logger:    logger,
	}
}

// Embed delegates to the inner embedder, retrying transient failures.
func (r *RetryingEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	var result domain.EmbeddingResult

	start := time.Now()

	err := r.policy.Do(ctx, r.retryable, func(ctx context.Context) error {
		var innerErr error
		result, innerErr = r.inner.Embed(ctx, text)
		if innerErr != nil {
			r.logger.Warn("Embedding attempt failed",
				zap.String("model", r.model),
				zap.Error(innerErr),
			)
		}
		return innerErr
	})

	duration := time.Since(start)

	if err != nil {
		r.logger.Error("Embedding request failed after retries",
			zap.String("model", r.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	r.logger.Debug("Embedding request completed",
		zap.String("model", r.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}
