package db

// Field types supported by search index definitions.
const (
	FieldTypeText    = "TEXT"
	FieldTypeTag     = "TAG"
	FieldTypeNumeric = "NUMERIC"
	FieldTypeVector  = "VECTOR"
)

// Vector index algorithms.
const (
	VectorAlgoHNSW = "HNSW"
	VectorAlgoFlat = "FLAT"
)

// Vector distance metrics.
const (
	DistanceCosine = "COSINE"
	DistanceL2     = "L2"
	DistanceIP     = "IP"
)

// IndexDefinition describes a search index over hash records.
type IndexDefinition struct {
	Name   string
	Prefix string
	Fields []FieldDefinition
}

// FieldDefinition describes one indexed field.
type FieldDefinition struct {
	Name     string
	Type     string
	Sortable bool
	// Vector holds vector-specific options; nil for non-vector fields.
	Vector *VectorOptions
}

// VectorOptions configures a VECTOR field.
type VectorOptions struct {
	Algorithm      string
	Dimensions     int
	DistanceMetric string
	// M and EFConstruction apply to HNSW only; zero means server default.
	M              int
	EFConstruction int
}
