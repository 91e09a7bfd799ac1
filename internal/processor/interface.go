package processor

import (
	"context"

	"github.com/nguyentantai21042004/minutes-flow/internal/events"
	"github.com/nguyentantai21042004/minutes-flow/internal/store"
	"github.com/nguyentantai21042004/minutes-flow/internal/summarizer"
	"github.com/nguyentantai21042004/minutes-flow/internal/transcript"
)

// Upload is one audio artifact handed to the pipeline. The processor owns
// Path from the moment Process is called and removes it on every exit path.
type Upload struct {
	Path     string
	Filename string
	MIMEType string
	Language string
}

// Result is the payload of the terminal complete event.
type Result struct {
	Model           string            `json:"model"`
	Minutes         summarizer.Record `json:"minutes"`
	SummaryMarkdown string            `json:"summary_markdown"`
	DocumentURL     string            `json:"document_url"`
	Locator         string            `json:"locator"`
	Speakers        []string          `json:"speakers"`
	Stats           Stats             `json:"stats"`
	Diarization     Diarization       `json:"diarization"`
}

type Stats struct {
	Utterances int `json:"utterances"`
	Speakers   int `json:"speakers"`
}

type Diarization struct {
	Utterances      []transcript.Utterance             `json:"utterances"`
	FullText        string                             `json:"full_text"`
	Language        string                             `json:"language"`
	DurationSeconds float64                            `json:"duration_seconds"`
	PerSpeaker      map[string]transcript.SpeakerStats `json:"per_speaker"`
}

// Processor runs the meeting pipeline.
type Processor interface {
	// Process runs transcription, generation and rendering for one upload,
	// reporting through em. em always receives exactly one terminal event,
	// and it is the last one. The returned error is a *errors.PipelineError.
	Process(ctx context.Context, upload Upload, em events.Emitter) (*Result, error)

	// Regenerate renders edited markup into a new document. No provider is called.
	Regenerate(ctx context.Context, markdown, title string) (store.Document, error)

	// Model returns the active generation model identifier.
	Model() string
}
