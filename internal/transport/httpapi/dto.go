package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/compcontext/notedex/internal/domain/resource"
	"github.com/compcontext/notedex/internal/domain/search/filter"
	"github.com/compcontext/notedex/internal/domain/search/result"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type searchRequest struct {
	Query   string            `json:"query"`
	Filters map[string]string `json:"filters,omitempty"`
}

type searchResultItem struct {
	ID               string   `json:"id"`
	Title            string   `json:"title,omitempty"`
	URL              string   `json:"url"`
	Language         string   `json:"language,omitempty"`
	CourseLevel      string   `json:"course_level,omitempty"`
	SequencePosition string   `json:"sequence_position,omitempty"`
	Context          string   `json:"context,omitempty"`
	Description      string   `json:"description,omitempty"`
	Concepts         []string `json:"concepts,omitempty"`
	FileType         string   `json:"file_type,omitempty"`
	Author           string   `json:"author,omitempty"`
	University       string   `json:"university,omitempty"`
	Score            float64  `json:"score"`
}

type searchResponse struct {
	Items []searchResultItem `json:"items"`
	Total int                `json:"total"`
}

type resourceResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title,omitempty"`
	URL              string    `json:"url"`
	Language         string    `json:"language,omitempty"`
	CourseLevel      string    `json:"course_level,omitempty"`
	SequencePosition string    `json:"sequence_position,omitempty"`
	Context          string    `json:"context,omitempty"`
	Description      string    `json:"description,omitempty"`
	Concepts         []string  `json:"concepts,omitempty"`
	FileType         string    `json:"file_type,omitempty"`
	Author           string    `json:"author,omitempty"`
	University       string    `json:"university,omitempty"`
	SavedAt          time.Time `json:"saved_at"`
}

type resourceListResponse struct {
	Items      []resourceResponse `json:"items"`
	HasMore    bool               `json:"has_more"`
	NextCursor *string            `json:"next_cursor,omitempty"`
}

type countResponse struct {
	Count int `json:"count"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func searchResultToItem(r *result.Result) searchResultItem {
	return searchResultItem{
		ID:               r.ID,
		Title:            r.Title,
		URL:              r.URL,
		Language:         r.Language,
		CourseLevel:      r.CourseLevel,
		SequencePosition: r.SequencePosition,
		Context:          r.Context,
		Description:      r.Description,
		Concepts:         r.Concepts,
		FileType:         r.FileType,
		Author:           r.Author,
		University:       r.University,
		Score:            r.Score,
	}
}

func resourceToResponse(res *resource.Resource) resourceResponse {
	return resourceResponse{
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
		SavedAt:          res.SavedAt,
	}
}

// filterFromQuery builds a facet filter from list/count query parameters.
// Unknown parameters are ignored, matching the filter map contract.
func filterFromQuery(r *http.Request) filter.Filter {
	q := r.URL.Query()
	m := make(map[string]string)
	for _, key := range []string{
		filter.KeyLanguage,
		filter.KeyCourseLevel,
		filter.KeySequencePosition,
		filter.KeyFileType,
		filter.KeyContext,
	} {
		if v := q.Get(key); v != "" {
			m[key] = v
		}
	}
	return filter.FromMap(m)
}

func limitFromQuery(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultPageSize, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return limit, nil
}
