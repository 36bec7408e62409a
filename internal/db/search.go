package db

// KNNQuery describes a vector K-nearest-neighbour search.
type KNNQuery struct {
	Index string
	// Filter is an optional query expression applied before the KNN step.
	// Empty means match all documents.
	Filter string
	Vector []float32
	K      int
	// ReturnFields limits the hash fields loaded per hit. Empty loads all.
	ReturnFields []string
}

// SearchResult holds matched entries and the total match count.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single search hit.
type SearchEntry struct {
	Key    string
	Fields map[string]string
	// Score is the similarity score in [0, 1]; meaningful for KNN only.
	Score float64
}
