package ingest

import (
	"encoding/json"
	"fmt"
	"strings"
)

// notebook models the subset of the Jupyter nbformat schema we read.
type notebook struct {
	Cells []notebookCell `json:"cells"`
	// nbformat 3 keeps cells under worksheets.
	Worksheets []struct {
		Cells []notebookCell `json:"cells"`
	} `json:"worksheets"`
	NBFormat int `json:"nbformat"`
}

type notebookCell struct {
	CellType string    `json:"cell_type"`
	Source   multiline `json:"source"`
	// nbformat 3 code cells use "input" instead of "source".
	Input multiline `json:"input"`
}

// multiline accepts both string and []string cell source encodings.
type multiline string

func (m *multiline) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = multiline(s)
		return nil
	}
	var lines []string
	if err := json.Unmarshal(data, &lines); err != nil {
		return err
	}
	*m = multiline(strings.Join(lines, ""))
	return nil
}

// NotebookText validates raw notebook JSON and flattens markdown and code
// cells into plain text, truncated to maxChars. Non-notebook JSON and
// unparseable payloads return an error wrapping ErrUnfetchable.
func NotebookText(data []byte, maxChars int) (string, error) {
	var nb notebook
	if err := json.Unmarshal(data, &nb); err != nil {
		return "", fmt.Errorf("%w: not valid notebook JSON: %w", ErrUnfetchable, err)
	}

	cells := nb.Cells
	for _, ws := range nb.Worksheets {
		cells = append(cells, ws.Cells...)
	}
	if len(cells) == 0 {
		return "", fmt.Errorf("%w: notebook has no cells", ErrUnfetchable)
	}

	var b strings.Builder
	for _, cell := range cells {
		text := string(cell.Source)
		if text == "" {
			text = string(cell.Input)
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		switch cell.CellType {
		case "markdown", "raw":
			b.WriteString(text)
		case "code":
			b.WriteString("```\n")
			b.WriteString(text)
			b.WriteString("\n```")
		default:
			continue
		}
		b.WriteString("\n\n")
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("%w: notebook has no readable content", ErrUnfetchable)
	}

	if maxChars > 0 && len(out) > maxChars {
		out = out[:maxChars]
	}
	return out, nil
}
