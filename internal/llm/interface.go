package llm

import "context"

// Request is one generation call: a system instruction, a user payload, the
// model identifier and an optional response schema.
type Request struct {
	System string
	User   string
	Model  string
	Schema *Schema
}

// Generator is implemented once per language-model vendor.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (Response, error)
}

// Schema is a vendor-neutral subset of JSON Schema.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Required    []string           `json:"required,omitempty"`
}
