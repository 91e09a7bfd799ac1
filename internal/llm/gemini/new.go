package gemini

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

var _ llm.Generator = (*implGenerator)(nil)

type implGenerator struct {
	clients    []*genai.Client
	currentKey int
	mu         sync.Mutex
	logger     logger.Logger
}

// New creates a Generator that rotates through the supplied Gemini API keys.
func New(ctx context.Context, apiKeys []string, log logger.Logger) (llm.Generator, error) {
	if len(apiKeys) == 0 {
		return nil, fmt.Errorf("gemini: at least one API key is required")
	}

	clients := make([]*genai.Client, 0, len(apiKeys))
	for i, key := range apiKeys {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create client for key %d: %w", i+1, err)
		}
		clients = append(clients, client)
	}

	return &implGenerator{
		clients: clients,
		logger:  log,
	}, nil
}
