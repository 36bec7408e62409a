package domain

import "errors"

var (
	// ErrInvalidQuery signals an empty or otherwise unusable search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrResourceNotFound signals a missing catalog resource.
	ErrResourceNotFound = errors.New("resource not found")
	// ErrEmbeddingProvider signals an embedding provider failure
	// (auth, exhausted rate-limit retries, empty response).
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrIndexUnavailable signals a missing or misconfigured search index.
	ErrIndexUnavailable = errors.New("search index unavailable")
	// ErrStore signals any other document store failure.
	ErrStore = errors.New("store error")
	// ErrMetadataExtraction signals a failed LLM metadata extraction.
	ErrMetadataExtraction = errors.New("metadata extraction failed")
)
