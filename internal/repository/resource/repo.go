// Package resource persists catalog resources as Redis hashes behind an
// FT index with facet TAG fields and an HNSW vector field.
package resource

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/compcontext/notedex/internal/db"
	"github.com/compcontext/notedex/internal/domain"
	domres "github.com/compcontext/notedex/internal/domain/resource"
	"github.com/compcontext/notedex/internal/domain/search/filter"
)

// store is the consumer interface for resource persistence (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SearchList(ctx context.Context, index, query string, offset, limit int, fields []string) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements resource persistence over a db store.
type Repo struct {
	store store
}

// New creates a resource repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// EnsureIndex creates the catalog FT index if it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context, vectorDim int, hnsw HNSWConfig) error {
	exists, err := r.store.IndexExists(ctx, IndexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	if err := r.store.CreateIndex(ctx, buildIndex(vectorDim, hnsw)); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Upsert creates or updates a resource. Returns true if created.
func (r *Repo) Upsert(ctx context.Context, res *domres.Resource) (bool, error) {
	if err := res.Validate(); err != nil {
		return false, err
	}

	key := resourceKey(res.ID)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, storeErr("check exists", err)
	}

	if err := r.store.HSet(ctx, key, buildHashFields(res)); err != nil {
		return false, storeErr("hset", err)
	}

	return !exists, nil
}

// Get returns a resource by ID.
func (r *Repo) Get(ctx context.Context, id string) (domres.Resource, error) {
	key := resourceKey(id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domres.Resource{}, storeErr("hgetall", err)
	}
	// HGETALL on a missing key returns an empty map, not an error.
	if len(m) == 0 {
		return domres.Resource{}, domain.ErrResourceNotFound
	}
	return parseHashFields(id, m), nil
}

// Exists reports whether a resource is already stored.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Exists(ctx, resourceKey(id))
	if err != nil {
		return false, storeErr("check exists", err)
	}
	return ok, nil
}

// Delete removes a resource.
func (r *Repo) Delete(ctx context.Context, id string) error {
	key := resourceKey(id)

	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return storeErr("check exists", err)
	}
	if !exists {
		return domain.ErrResourceNotFound
	}

	if err := r.store.Del(ctx, key); err != nil {
		return storeErr("del", err)
	}
	return nil
}

// List returns resources matching the filter's facet criteria with
// cursor-based pagination. Context substring filtering is left to the caller.
func (r *Repo) List(ctx context.Context, f filter.Filter, cursor string, limit int) (
	[]domres.Resource, string, error,
) {
	if limit <= 0 {
		limit = 20
	}

	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor %q: %w", cursor, domain.ErrInvalidQuery)
		}
		offset = parsed
	}

	fetchCount := limit + 1

	sr, err := r.store.SearchList(ctx, IndexName(), buildFacetQuery(f), offset, fetchCount, nil)
	if err != nil {
		return nil, "", searchErr(err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, "", nil
	}

	resources := make([]domres.Resource, 0, limit)
	for i, entry := range sr.Entries {
		if i >= limit {
			break
		}
		resources = append(resources, parseHashFields(extractID(entry.Key), entry.Fields))
	}

	var nextCursor string
	if len(sr.Entries) > limit {
		nextCursor = strconv.Itoa(offset + limit)
	}

	return resources, nextCursor, nil
}

// Count returns the number of resources matching the filter's facet criteria.
func (r *Repo) Count(ctx context.Context, f filter.Filter) (int, error) {
	n, err := r.store.SearchCount(ctx, IndexName(), buildFacetQuery(f))
	if err != nil {
		return 0, searchErr(err)
	}
	return n, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
}

func searchErr(err error) error {
	if errors.Is(err, db.ErrIndexNotFound) {
		return domain.ErrIndexUnavailable
	}
	return fmt.Errorf("%w: %w", domain.ErrStore, err)
}
