package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/compcontext/notedex/internal/domain"
	"github.com/compcontext/notedex/internal/domain/resource"
)

const extractorSystemPrompt = `You are a cataloger of educational computing resources.
Given the text of a notebook or course file, return a JSON object with exactly these keys:
  title: short human-readable title
  language: primary programming language, lower case (e.g. "python")
  course_level: one of "intro", "intermediate", "advanced"
  sequence_position: one of "early", "middle", "late" within a typical course
  context: the real-world discipline or scenario the material is framed in
  description: two or three sentences summarizing the material
  concepts: array of the computing concepts taught
  file_type: one of "notebook", "script", "document"
  author: author name if stated, else empty string
  university: institution name if stated, else empty string
Respond with the JSON object only, no surrounding prose.`

// Extractor derives catalog metadata from notebook text via chat completion.
type Extractor struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ExtractorConfig holds the metadata extraction settings.
type ExtractorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout bounds each provider call. Zero leaves the HTTP client unbounded.
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewExtractor creates a chat-completion metadata extractor.
func NewExtractor(cfg *ExtractorConfig) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Extractor{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Extract asks the model to describe the given content. All failures wrap
// domain.ErrMetadataExtraction; the pipeline skips the resource, not the run.
func (e *Extractor) Extract(ctx context.Context, content string) (resource.Metadata, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractorSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return resource.Metadata{}, fmt.Errorf("chat completion: %w: %w", domain.ErrMetadataExtraction, err)
	}
	if len(resp.Choices) == 0 {
		return resource.Metadata{}, fmt.Errorf("empty completion response: %w", domain.ErrMetadataExtraction)
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	raw = stripCodeFence(raw)

	var md resource.Metadata
	if err := json.Unmarshal([]byte(raw), &md); err != nil {
		e.logger.Warn("Unparseable metadata response", zap.String("body", truncate(raw, 200)), zap.Error(err))
		return resource.Metadata{}, fmt.Errorf("parse metadata: %w: %w", domain.ErrMetadataExtraction, err)
	}

	normalizeMetadata(&md)
	return md, nil
}

// normalizeMetadata lower-cases the facet fields so stored values match the
// filter normalization applied at query time.
func normalizeMetadata(md *resource.Metadata) {
	md.Language = strings.ToLower(strings.TrimSpace(md.Language))
	md.CourseLevel = strings.ToLower(strings.TrimSpace(md.CourseLevel))
	md.SequencePosition = strings.ToLower(strings.TrimSpace(md.SequencePosition))
	md.FileType = strings.ToLower(strings.TrimSpace(md.FileType))
}

// stripCodeFence unwraps ```json ... ``` blocks some models emit despite
// the JSON response format.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
