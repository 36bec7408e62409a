package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/compcontext/notedex/internal/domain"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		resp := map[string]any{
			"object": "chat.completion",
			"choices": []map[string]any{
				{
					"index": 0,
					"message": map[string]any{
						"role":    "assistant",
						"content": content,
					},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

const sampleMetadataJSON = `{
	"title": "Weather Data Analysis",
	"language": "Python",
	"course_level": "Intro",
	"sequence_position": "early",
	"context": "climate science",
	"description": "Loads a CSV of temperatures and plots trends.",
	"concepts": ["loops", "file io", "plotting"],
	"file_type": "Notebook",
	"author": "Dr. Lin",
	"university": "Example State"
}`

func TestExtract_HappyPath(t *testing.T) {
	server := chatServer(t, sampleMetadataJSON)
	defer server.Close()

	ex := NewExtractor(&ExtractorConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-chat",
		Logger:  zap.NewNop(),
	})

	md, err := ex.Extract(context.Background(), "notebook text")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if md.Title != "Weather Data Analysis" {
		t.Errorf("title = %q", md.Title)
	}
	// Facet fields are lower-cased to match query-time normalization.
	if md.Language != "python" || md.CourseLevel != "intro" || md.FileType != "notebook" {
		t.Errorf("facets not normalized: %+v", md)
	}
	if len(md.Concepts) != 3 || md.Concepts[2] != "plotting" {
		t.Errorf("concepts = %v", md.Concepts)
	}
}

func TestExtract_CodeFencedJSON(t *testing.T) {
	server := chatServer(t, "```json\n"+sampleMetadataJSON+"\n```")
	defer server.Close()

	ex := NewExtractor(&ExtractorConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-chat",
		Logger:  zap.NewNop(),
	})

	md, err := ex.Extract(context.Background(), "notebook text")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if md.University != "Example State" {
		t.Errorf("university = %q", md.University)
	}
}

func TestExtract_UnparseableResponse(t *testing.T) {
	server := chatServer(t, "I could not process this notebook.")
	defer server.Close()

	ex := NewExtractor(&ExtractorConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-chat",
		Logger:  zap.NewNop(),
	})

	_, err := ex.Extract(context.Background(), "notebook text")
	if !errors.Is(err, domain.ErrMetadataExtraction) {
		t.Fatalf("expected ErrMetadataExtraction, got %v", err)
	}
}

func TestExtract_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "upstream exploded", "type": "server_error"},
		})
	}))
	defer server.Close()

	ex := NewExtractor(&ExtractorConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-chat",
		Logger:  zap.NewNop(),
	})

	_, err := ex.Extract(context.Background(), "notebook text")
	if !errors.Is(err, domain.ErrMetadataExtraction) {
		t.Fatalf("expected ErrMetadataExtraction, got %v", err)
	}
}
