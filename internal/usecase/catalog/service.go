// Package catalog exposes non-vector access to the resource catalog:
// browsing with metadata filters, single-resource lookup, and counts.
package catalog

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/compcontext/notedex/internal/domain"
	"github.com/compcontext/notedex/internal/domain/resource"
	"github.com/compcontext/notedex/internal/domain/search/filter"
)

const defaultPageSize = 20

// Repository is the persistence contract the catalog service depends on.
type Repository interface {
	Get(ctx context.Context, id string) (resource.Resource, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f filter.Filter, cursor string, limit int) ([]resource.Resource, string, error)
	Count(ctx context.Context, f filter.Filter) (int, error)
}

// Service handles catalog browse and lookup requests.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates a catalog service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Page is one page of the catalog listing.
type Page struct {
	Resources  []resource.Resource
	NextCursor string
}

// Browse lists resources matching the filter. Facet criteria are pushed to
// the index; the context substring criterion is applied here because the
// store cannot express case-insensitive substring matching over TAG fields.
func (s *Service) Browse(ctx context.Context, f filter.Filter, cursor string, limit int) (Page, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}

	if f.Context() == "" {
		resources, next, err := s.repo.List(ctx, f, cursor, limit)
		if err != nil {
			return Page{}, fmt.Errorf("list resources: %w", err)
		}

		s.logger.Debug("Catalog browse",
			zap.Int("resources", len(resources)),
			zap.String("cursor", cursor),
		)
		return Page{Resources: resources, NextCursor: next}, nil
	}

	return s.browseWithContext(ctx, f, cursor, limit)
}

// browseWithContext narrows by the context substring in-process, fetching
// further pages until the requested page fills or the catalog ends. The
// offset cursor counts facet-matching records, so a page that fills
// mid-batch resumes right after the last returned record.
func (s *Service) browseWithContext(ctx context.Context, f filter.Filter, cursor string, limit int) (Page, error) {
	offset := 0
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 0 {
			return Page{}, fmt.Errorf("invalid cursor %q: %w", cursor, domain.ErrInvalidQuery)
		}
		offset = parsed
	}

	var out []resource.Resource
	for {
		batch, next, err := s.repo.List(ctx, f, strconv.Itoa(offset), limit)
		if err != nil {
			return Page{}, fmt.Errorf("list resources: %w", err)
		}

		for i, r := range batch {
			if !f.Matches(r.Language, r.CourseLevel, r.SequencePosition, r.FileType, r.Context) {
				continue
			}
			out = append(out, r)
			if len(out) == limit {
				nextCursor := ""
				if i+1 < len(batch) || next != "" {
					nextCursor = strconv.Itoa(offset + i + 1)
				}
				s.logger.Debug("Catalog browse",
					zap.Int("resources", len(out)),
					zap.String("cursor", cursor),
				)
				return Page{Resources: out, NextCursor: nextCursor}, nil
			}
		}

		if next == "" {
			s.logger.Debug("Catalog browse",
				zap.Int("resources", len(out)),
				zap.String("cursor", cursor),
			)
			return Page{Resources: out, NextCursor: ""}, nil
		}
		offset += len(batch)
	}
}

// Get returns one resource by ID.
func (s *Service) Get(ctx context.Context, id string) (resource.Resource, error) {
	res, err := s.repo.Get(ctx, id)
	if err != nil {
		return resource.Resource{}, fmt.Errorf("get resource: %w", err)
	}
	return res, nil
}

// Delete removes a resource from the catalog.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	s.logger.Info("Resource deleted", zap.String("id", id))
	return nil
}

// Count returns the number of resources matching the filter's facets.
func (s *Service) Count(ctx context.Context, f filter.Filter) (int, error) {
	n, err := s.repo.Count(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("count resources: %w", err)
	}
	return n, nil
}
