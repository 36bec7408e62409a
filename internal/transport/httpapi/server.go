// Package httpapi exposes the catalog over a chi-routed JSON API.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/compcontext/notedex/internal/domain"
	"github.com/compcontext/notedex/internal/domain/search/filter"
	logpkg "github.com/compcontext/notedex/internal/logger"
	cataloguc "github.com/compcontext/notedex/internal/usecase/catalog"
	healthuc "github.com/compcontext/notedex/internal/usecase/health"
	searchuc "github.com/compcontext/notedex/internal/usecase/search"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Error codes returned in JSON error responses.
const (
	codeBadRequest        = "bad_request"
	codeInvalidQuery      = "invalid_query"
	codeResourceNotFound  = "resource_not_found"
	codeEmbeddingProvider = "embedding_provider_error"
	codeIndexUnavailable  = "index_unavailable"
	codeStoreUnavailable  = "store_unavailable"
	codeInternalError     = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements the HTTP API on top of the use case services.
type Server struct {
	search        *searchuc.Service
	catalog       *cataloguc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search *searchuc.Service,
	catalog *cataloguc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		catalog: catalog,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeInvalidQuery),
		sentinelHandler(domain.ErrResourceNotFound, http.StatusNotFound, codeResourceNotFound),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeEmbeddingProvider),
		sentinelHandler(domain.ErrIndexUnavailable, http.StatusServiceUnavailable, codeIndexUnavailable),
		sentinelHandler(domain.ErrStore, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// Register mounts all API routes on the given router.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", s.Liveness)
	r.Get("/readyz", s.Readiness)
	r.Get("/metrics", s.Metrics)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.Search)
		r.Route("/resources", func(r chi.Router) {
			r.Get("/", s.ListResources)
			r.Get("/count", s.CountResources)
			r.Get("/{id}", s.GetResource)
			r.Delete("/{id}", s.DeleteResource)
		})
	})
}

// Search handles POST /api/v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	results, err := s.search.Search(r.Context(), req.Query, filter.FromMap(req.Filters))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]searchResultItem, len(results))
	for i := range results {
		items[i] = searchResultToItem(&results[i])
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Items: items,
		Total: len(items),
	})
}

// ListResources handles GET /api/v1/resources.
func (s *Server) ListResources(w http.ResponseWriter, r *http.Request) {
	f := filterFromQuery(r)
	cursor := r.URL.Query().Get("cursor")
	limit, err := limitFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	page, err := s.catalog.Browse(r.Context(), f, cursor, limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]resourceResponse, len(page.Resources))
	for i := range page.Resources {
		items[i] = resourceToResponse(&page.Resources[i])
	}

	resp := resourceListResponse{
		Items:   items,
		HasMore: page.NextCursor != "",
	}
	if page.NextCursor != "" {
		resp.NextCursor = &page.NextCursor
	}

	writeJSON(w, http.StatusOK, resp)
}

// CountResources handles GET /api/v1/resources/count.
func (s *Server) CountResources(w http.ResponseWriter, r *http.Request) {
	count, err := s.catalog.Count(r.Context(), filterFromQuery(r))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, countResponse{Count: count})
}

// GetResource handles GET /api/v1/resources/{id}.
func (s *Server) GetResource(w http.ResponseWriter, r *http.Request) {
	res, err := s.catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resourceToResponse(&res))
}

// DeleteResource handles DELETE /api/v1/resources/{id}.
func (s *Server) DeleteResource(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Liveness handles GET /healthz. It only proves the process serves traffic;
// dependency state belongs to readiness.
func (s *Server) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// Readiness handles GET /readyz, reporting dependency health.
func (s *Server) Readiness(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	// Request-scoped logger carries request_id when RequestLogger is mounted.
	logpkg.FromContext(r.Context()).Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		domain.ErrResourceNotFound,
		domain.ErrEmbeddingProvider,
		domain.ErrIndexUnavailable,
		domain.ErrStore,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
