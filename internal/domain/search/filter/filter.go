// Package filter defines the closed filter schema for catalog search.
package filter

import "strings"

// Recognized filter keys. Anything else in the input map is ignored.
const (
	KeyLanguage         = "language"
	KeyCourseLevel      = "course_level"
	KeySequencePosition = "sequence_position"
	KeyFileType         = "file_type"
	KeyContext          = "context"
)

// Filter narrows search candidates by catalog facets. The four facet
// fields match exactly (case-insensitive); Context matches as a
// case-insensitive substring. The zero value matches everything.
type Filter struct {
	language         string
	courseLevel      string
	sequencePosition string
	fileType         string
	context          string
}

// FromMap builds a Filter from a raw key-value map, validating once at the
// boundary. Unrecognized keys are silently ignored, not rejected. Facet
// values are lower-cased here so match sites never re-normalize.
func FromMap(m map[string]string) Filter {
	var f Filter
	for k, v := range m {
		switch k {
		case KeyLanguage:
			f.language = strings.ToLower(v)
		case KeyCourseLevel:
			f.courseLevel = strings.ToLower(v)
		case KeySequencePosition:
			f.sequencePosition = strings.ToLower(v)
		case KeyFileType:
			f.fileType = strings.ToLower(v)
		case KeyContext:
			f.context = v
		}
	}
	return f
}

// IsEmpty reports whether the filter has no active criteria.
func (f Filter) IsEmpty() bool {
	return f.language == "" && f.courseLevel == "" &&
		f.sequencePosition == "" && f.fileType == "" && f.context == ""
}

// Language returns the normalized language criterion.
func (f Filter) Language() string { return f.language }

// CourseLevel returns the normalized course level criterion.
func (f Filter) CourseLevel() string { return f.courseLevel }

// SequencePosition returns the normalized sequence position criterion.
func (f Filter) SequencePosition() string { return f.sequencePosition }

// FileType returns the normalized file type criterion.
func (f Filter) FileType() string { return f.fileType }

// Context returns the context substring criterion.
func (f Filter) Context() string { return f.context }

// Matches reports whether a record with the given field values satisfies
// every active criterion.
func (f Filter) Matches(language, courseLevel, sequencePosition, fileType, context string) bool {
	if f.language != "" && strings.ToLower(language) != f.language {
		return false
	}
	if f.courseLevel != "" && strings.ToLower(courseLevel) != f.courseLevel {
		return false
	}
	if f.sequencePosition != "" && strings.ToLower(sequencePosition) != f.sequencePosition {
		return false
	}
	if f.fileType != "" && strings.ToLower(fileType) != f.fileType {
		return false
	}
	if f.context != "" && !strings.Contains(strings.ToLower(context), strings.ToLower(f.context)) {
		return false
	}
	return true
}
