package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/minutes-flow/internal/prompt"
)

// Summarizer produces the structured minutes and the narrative summary of a meeting.
type Summarizer interface {
	Model() string
	GenerateRecord(ctx context.Context, p prompt.Prompts) (Record, error)
	GenerateSummary(ctx context.Context, p prompt.Prompts) (string, error)
}
