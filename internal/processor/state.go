package processor

import mferrors "github.com/nguyentantai21042004/minutes-flow/internal/errors"

// State is a step of one pipeline run.
type State string

const (
	StateReceived          State = "received"
	StateQueued            State = "queued"
	StateTranscribing      State = State(mferrors.StageTranscribing)
	StateGeneratingRecord  State = State(mferrors.StageGeneratingRecord)
	StateGeneratingSummary State = State(mferrors.StageGeneratingSum)
	StateRendering         State = State(mferrors.StageRendering)
	StateComplete          State = "complete"
	StateFailed            State = "failed"
)

var progressMessages = map[State]string{
	StateQueued:            "Waiting for a free processing slot",
	StateTranscribing:      "Transcribing audio",
	StateGeneratingRecord:  "Generating structured minutes",
	StateGeneratingSummary: "Writing executive summary",
	StateRendering:         "Rendering document",
}
