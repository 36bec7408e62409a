// Package result defines the projection returned by catalog search.
package result

// Result is a single search hit: a persisted resource joined with the
// similarity score computed for this query. Constructed fresh per request,
// never persisted.
type Result struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	URL              string   `json:"url"`
	Language         string   `json:"language"`
	CourseLevel      string   `json:"course_level"`
	SequencePosition string   `json:"sequence_position"`
	Context          string   `json:"context"`
	Description      string   `json:"description"`
	Concepts         []string `json:"concepts"`
	FileType         string   `json:"file_type"`
	Author           string   `json:"author"`
	University       string   `json:"university"`
	// Score is index-provided similarity in [0,1], higher = more relevant.
	Score float64 `json:"score"`
}
