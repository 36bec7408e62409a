package resource

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"time"

	domres "github.com/compcontext/notedex/internal/domain/resource"
)

// Hash field names for persisted resources. The vector field name doubles
// as the index attribute referenced by KNN queries (@vector).
const (
	fieldTitle            = "title"
	fieldURL              = "url"
	fieldLanguage         = "language"
	fieldCourseLevel      = "course_level"
	fieldSequencePosition = "sequence_position"
	fieldContext          = "context"
	fieldDescription      = "description"
	fieldConcepts         = "concepts"
	fieldFileType         = "file_type"
	fieldAuthor           = "author"
	fieldUniversity       = "university"
	fieldContent          = "content"
	fieldVector           = "vector"
	fieldSavedAt          = "saved_at"
)

// buildHashFields converts a domain Resource into a flat map[string]string for HSET.
func buildHashFields(res *domres.Resource) map[string]string {
	m := map[string]string{
		fieldTitle:            res.Title,
		fieldURL:              res.URL,
		fieldLanguage:         res.Language,
		fieldCourseLevel:      res.CourseLevel,
		fieldSequencePosition: res.SequencePosition,
		fieldContext:          res.Context,
		fieldDescription:      res.Description,
		fieldFileType:         res.FileType,
		fieldAuthor:           res.Author,
		fieldUniversity:       res.University,
		fieldContent:          res.Content,
		fieldVector:           vectorToBytes(res.Vector),
	}
	if len(res.Concepts) > 0 {
		if data, err := json.Marshal(res.Concepts); err == nil {
			m[fieldConcepts] = string(data)
		}
	}
	if !res.SavedAt.IsZero() {
		m[fieldSavedAt] = res.SavedAt.UTC().Format(time.RFC3339)
	}
	return m
}

// parseHashFields converts a flat hash map back into a domain Resource.
func parseHashFields(id string, m map[string]string) domres.Resource {
	res := domres.Resource{
		ID:               id,
		Title:            m[fieldTitle],
		URL:              m[fieldURL],
		Language:         m[fieldLanguage],
		CourseLevel:      m[fieldCourseLevel],
		SequencePosition: m[fieldSequencePosition],
		Context:          m[fieldContext],
		Description:      m[fieldDescription],
		FileType:         m[fieldFileType],
		Author:           m[fieldAuthor],
		University:       m[fieldUniversity],
		Content:          m[fieldContent],
		Vector:           bytesToVector(m[fieldVector]),
		Concepts:         parseConcepts(m[fieldConcepts]),
	}
	if raw := m[fieldSavedAt]; raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			res.SavedAt = t
		}
	}
	return res
}

// FromEntry converts a raw search hit (full key plus hash fields) into a
// domain Resource. Used by the search repository to share field mapping.
func FromEntry(key string, fields map[string]string) domres.Resource {
	return parseHashFields(extractID(key), fields)
}

func parseConcepts(raw string) []string {
	if raw == "" {
		return nil
	}
	var concepts []string
	if err := json.Unmarshal([]byte(raw), &concepts); err != nil {
		return nil
	}
	return concepts
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
