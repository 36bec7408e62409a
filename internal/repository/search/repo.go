// Package search adapts KNN store hits into domain search results.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/compcontext/notedex/internal/db"
	"github.com/compcontext/notedex/internal/domain"
	domres "github.com/compcontext/notedex/internal/domain/resource"
	"github.com/compcontext/notedex/internal/domain/search/result"
	resrepo "github.com/compcontext/notedex/internal/repository/resource"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements the search candidate source over the catalog index.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// SearchKNN returns the k nearest resources to the query vector, ordered by
// descending similarity. Missing-index errors surface as ErrIndexUnavailable,
// everything else as ErrStore.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, k int) ([]result.Result, error) {
	q := &db.KNNQuery{
		Index:  resrepo.IndexName(),
		Vector: vector,
		K:      k,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return nil, domain.ErrIndexUnavailable
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	results := make([]result.Result, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		results = append(results, toResult(entry))
	}
	return results, nil
}

// toResult maps one search hit from flat hash fields to the API projection.
func toResult(entry db.SearchEntry) result.Result {
	res := resrepo.FromEntry(entry.Key, entry.Fields)
	return ToResult(res, entry.Score)
}

// ToResult projects a stored resource plus a per-query score into a Result.
func ToResult(res domres.Resource, score float64) result.Result {
	return result.Result{
		ID:               res.ID,
		Title:            res.Title,
		URL:              res.URL,
		Language:         res.Language,
		CourseLevel:      res.CourseLevel,
		SequencePosition: res.SequencePosition,
		Context:          res.Context,
		Description:      res.Description,
		Concepts:         res.Concepts,
		FileType:         res.FileType,
		Author:           res.Author,
		University:       res.University,
		Score:            score,
	}
}
