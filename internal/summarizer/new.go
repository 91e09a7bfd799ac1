package summarizer

import (
	"github.com/nguyentantai21042004/minutes-flow/internal/llm"
	"github.com/nguyentantai21042004/minutes-flow/internal/logger"
)

type implSummarizer struct {
	generator llm.Generator
	logger    logger.Logger
	model     string
}

// New creates a Summarizer backed by the given language-model generator.
func New(gen llm.Generator, model string, log logger.Logger) Summarizer {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &implSummarizer{
		generator: gen,
		logger:    log,
		model:     model,
	}
}
