package httpapi

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/compcontext/notedex/internal/domain"
	"github.com/compcontext/notedex/internal/domain/resource"
	"github.com/compcontext/notedex/internal/domain/search/filter"
	"github.com/compcontext/notedex/internal/domain/search/result"
	cataloguc "github.com/compcontext/notedex/internal/usecase/catalog"
	healthuc "github.com/compcontext/notedex/internal/usecase/health"
	searchuc "github.com/compcontext/notedex/internal/usecase/search"
)

// mockSearchRepo implements searchuc.Repository for tests.
type mockSearchRepo struct {
	searchKNNFn func(ctx context.Context, vector []float32, k int) ([]result.Result, error)
}

func (m *mockSearchRepo) SearchKNN(ctx context.Context, vector []float32, k int) ([]result.Result, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, vector, k)
	}
	return nil, nil
}

// mockEmbedder implements searchuc.Embedder for tests.
type mockEmbedder struct {
	embedFn func(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

// mockCatalogRepo implements cataloguc.Repository for tests.
type mockCatalogRepo struct {
	getFn    func(ctx context.Context, id string) (resource.Resource, error)
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context, f filter.Filter, cursor string, limit int) ([]resource.Resource, string, error)
	countFn  func(ctx context.Context, f filter.Filter) (int, error)
}

func (m *mockCatalogRepo) Get(ctx context.Context, id string) (resource.Resource, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return resource.Resource{}, domain.ErrResourceNotFound
}

func (m *mockCatalogRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockCatalogRepo) List(
	ctx context.Context, f filter.Filter, cursor string, limit int,
) ([]resource.Resource, string, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f, cursor, limit)
	}
	return nil, "", nil
}

func (m *mockCatalogRepo) Count(ctx context.Context, f filter.Filter) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx, f)
	}
	return 0, nil
}

// mockPinger implements healthuc.DBPinger for tests.
type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

type testEnv struct {
	server      *httptest.Server
	searchRepo  *mockSearchRepo
	embedder    *mockEmbedder
	catalogRepo *mockCatalogRepo
	pinger      *mockPinger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLogger(t, zap.NewNop())
}

func newTestEnvWithLogger(t *testing.T, logger *zap.Logger) *testEnv {
	t.Helper()

	env := &testEnv{
		searchRepo:  &mockSearchRepo{},
		embedder:    &mockEmbedder{},
		catalogRepo: &mockCatalogRepo{},
		pinger:      &mockPinger{},
	}

	srv := NewServer(
		searchuc.New(env.searchRepo, env.embedder, searchuc.Config{}, logger),
		cataloguc.New(env.catalogRepo, logger),
		healthuc.New(env.pinger, nil),
		logger,
	)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	srv.Register(r)

	env.server = httptest.NewServer(r)
	t.Cleanup(env.server.Close)
	return env
}

func sampleResource(id string) resource.Resource {
	return resource.Resource{
		ID:          id,
		Title:       "Intro to Pandas",
		URL:         "https://example.edu/pandas.ipynb",
		Language:    "python",
		CourseLevel: "intro",
		FileType:    "notebook",
		Concepts:    []string{"dataframes"},
		Vector:      []float32{0.1, 0.2},
	}
}
