package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
)

func (g *implGenerator) Name() string { return "gemini" }

// Generate sends the request to Gemini. Rotates API keys on 429 / quota errors.
func (g *implGenerator) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = toGenaiSchema(req.Schema)
	}

	var lastErr error
	for range len(g.clients) {
		client, idx := g.client()

		result, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.User), config)
		if err != nil {
			if isQuotaError(err) {
				g.logger.Warn(ctx, "Gemini key %d rate limited, rotating...", idx+1)
				g.rotateKey(idx)
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("generate content: %w", err)
		}

		return fromGenaiResponse(result), nil
	}

	return nil, fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *implGenerator) client() (*genai.Client, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.clients[g.currentKey], g.currentKey
}

// rotateKey advances past idx unless another request already rotated.
func (g *implGenerator) rotateKey(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.clients)
	}
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// fromGenaiResponse concatenates the text parts of the first candidate.
func fromGenaiResponse(result *genai.GenerateContentResponse) llm.Response {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return llm.Unrecognized{Reason: "empty response from Gemini"}
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	return llm.TextResponse{Text: text.String()}
}

func toGenaiSchema(s *llm.Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}
	return out
}

func genaiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
