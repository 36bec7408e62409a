package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/compcontext/notedex/internal/db"
)

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if idx.Name == "" {
		return nil, errors.New("index name is required")
	}
	if len(idx.Fields) == 0 {
		return nil, errors.New("at least one field is required")
	}

	args := []string{idx.Name, "ON", "HASH"}

	if idx.Prefix != "" {
		args = append(args, "PREFIX", "1", idx.Prefix)
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

func buildFieldArgs(f *db.FieldDefinition) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	args := []string{f.Name}

	switch f.Type {
	case db.FieldTypeNumeric:
		args = append(args, "NUMERIC")

	case db.FieldTypeText:
		args = append(args, "TEXT")

	case db.FieldTypeTag:
		args = append(args, "TAG")

	case db.FieldTypeVector:
		vectorArgs, err := buildVectorFieldArgs(f)
		if err != nil {
			return nil, err
		}
		args = append(args, vectorArgs...)

	default:
		return nil, errors.New("unknown field type")
	}

	if f.Sortable {
		args = append(args, "SORTABLE")
	}

	return args, nil
}

func buildVectorFieldArgs(f *db.FieldDefinition) ([]string, error) {
	if f.Vector == nil {
		return nil, errors.New("vector options are required")
	}
	if f.Vector.Dimensions <= 0 {
		return nil, errors.New("vector DIM must be positive")
	}

	algo := f.Vector.Algorithm
	if algo == "" {
		algo = db.VectorAlgoHNSW
	}

	distance := f.Vector.DistanceMetric
	if distance == "" {
		distance = db.DistanceCosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(f.Vector.Dimensions),
		"DISTANCE_METRIC", distance,
	}

	if algo == db.VectorAlgoHNSW {
		if f.Vector.M > 0 {
			attrs = append(attrs, "M", strconv.Itoa(f.Vector.M))
		}
		if f.Vector.EFConstruction > 0 {
			attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.Vector.EFConstruction))
		}
	}

	result := make([]string, 0, 3+len(attrs))
	result = append(result, "VECTOR", algo, strconv.Itoa(len(attrs)))
	result = append(result, attrs...)

	return result, nil
}
