package resource

// Metadata is the model-derived description of a notebook, produced once
// at ingestion time.
type Metadata struct {
	Title            string   `json:"title"`
	Language         string   `json:"language"`
	CourseLevel      string   `json:"course_level"`
	SequencePosition string   `json:"sequence_position"`
	Context          string   `json:"context"`
	Description      string   `json:"description"`
	Concepts         []string `json:"concepts"`
	FileType         string   `json:"file_type"`
	Author           string   `json:"author"`
	University       string   `json:"university"`
}

// Apply copies the extracted metadata onto a resource.
func (m Metadata) Apply(r *Resource) {
	r.Title = m.Title
	r.Language = m.Language
	r.CourseLevel = m.CourseLevel
	r.SequencePosition = m.SequencePosition
	r.Context = m.Context
	r.Description = m.Description
	r.Concepts = m.Concepts
	r.FileType = m.FileType
	r.Author = m.Author
	r.University = m.University
}
