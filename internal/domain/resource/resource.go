// Package resource defines the persisted catalog record.
package resource

import (
	"errors"
	"time"
)

// Resource is one catalog entry: an ingested educational notebook or file
// with LLM-derived metadata and a content embedding.
type Resource struct {
	ID               string
	Title            string
	URL              string
	Language         string
	CourseLevel      string
	SequencePosition string
	Context          string
	Description      string
	Concepts         []string
	FileType         string
	Author           string
	University       string

	// Content is the extracted plain text the vector was computed from.
	Content string
	// Vector is the content embedding. Dimensionality is fixed per deployment.
	Vector  []float32
	SavedAt time.Time
}

// Validate checks the fields persistence depends on.
func (r *Resource) Validate() error {
	if r.ID == "" {
		return errors.New("resource id is required")
	}
	if r.URL == "" {
		return errors.New("resource url is required")
	}
	if len(r.Vector) == 0 {
		return errors.New("resource vector is required")
	}
	return nil
}
