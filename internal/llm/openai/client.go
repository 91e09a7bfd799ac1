// Package openai implements llm.Generator against OpenAI-compatible chat
// completion endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
)

var _ llm.Generator = (*Client)(nil)

const defaultBaseURL = "https://api.openai.com"

type Config struct {
	APIKey  string
	BaseURL string
}

type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Client{cfg: cfg, client: &http.Client{}}
}

func (c *Client) Name() string { return "openai" }

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string      `json:"name"`
	Schema *llm.Schema `json:"schema"`
}

// Generate posts a chat completion request and returns the choices payload.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	body := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	}
	if req.Schema != nil {
		body.ResponseFormat = &responseFormat{
			Type:       "json_schema",
			JSONSchema: &jsonSchema{Name: "meeting_minutes", Schema: req.Schema},
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/v1/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling chat completions: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completions error (HTTP %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		Choices []llm.Choice `json:"choices"`
		Content []llm.Block  `json:"content"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("parsing chat completions response: %w", err)
	}

	switch {
	case len(parsed.Choices) > 0:
		return llm.ChoicesResponse{Choices: parsed.Choices}, nil
	case len(parsed.Content) > 0:
		// Some compatible gateways answer with message-style content blocks.
		return llm.BlocksResponse{Content: parsed.Content}, nil
	default:
		return llm.Unrecognized{Reason: "no choices or content blocks"}, nil
	}
}
