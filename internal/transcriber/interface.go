package transcriber

import (
	"context"

	"github.com/nguyentantai21042004/minutes-flow/internal/transcript"
)

// Audio is one pre-recorded audio artifact.
type Audio struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Options configures a transcription request.
type Options struct {
	Language   string
	Punctuate  bool
	Diarize    bool
	Utterances bool
}

// Transcriber is implemented once per transcription vendor.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, audio Audio, opts Options) (transcript.Response, error)
}

// DefaultOptions returns the options the pipeline always sends: punctuation,
// diarization and utterance segmentation on.
func DefaultOptions(language string) Options {
	return Options{
		Language:   language,
		Punctuate:  true,
		Diarize:    true,
		Utterances: true,
	}
}
