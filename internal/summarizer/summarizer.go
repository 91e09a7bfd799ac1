package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
	"github.com/nguyentantai21042004/minutes-flow/internal/prompt"
)

func (s *implSummarizer) Model() string {
	return s.model
}

// GenerateRecord asks for schema-constrained JSON minutes. Output that does
// not parse is kept as a raw-text record instead of failing the pipeline.
func (s *implSummarizer) GenerateRecord(ctx context.Context, p prompt.Prompts) (Record, error) {
	text, err := s.generate(ctx, p.Record, minutesSchema)
	if err != nil {
		return Record{}, fmt.Errorf("generate record: %w", err)
	}

	var m Minutes
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &m); err != nil {
		s.logger.Warn(ctx, "Structured record is not valid JSON, keeping raw text: %v", err)
		return Record{Raw: text}, nil
	}
	return Record{Minutes: &m}, nil
}

// GenerateSummary asks for the free-form Markdown executive summary.
func (s *implSummarizer) GenerateSummary(ctx context.Context, p prompt.Prompts) (string, error) {
	text, err := s.generate(ctx, p.Summary, nil)
	if err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (s *implSummarizer) generate(ctx context.Context, payload prompt.Payload, schema *llm.Schema) (string, error) {
	resp, err := s.generator.Generate(ctx, llm.Request{
		System: payload.System,
		User:   payload.User,
		Model:  s.model,
		Schema: schema,
	})
	if err != nil {
		return "", err
	}

	text, ok := llm.ExtractText(resp)
	if !ok {
		return "", fmt.Errorf("empty response from %s", s.generator.Name())
	}
	return text, nil
}

// stripCodeFence removes a surrounding ```json fence some models add.
func stripCodeFence(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "```"))
}
