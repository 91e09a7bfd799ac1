package events

type Kind string

const (
	KindProgress Kind = "progress"
	KindComplete Kind = "complete"
	KindError    Kind = "error"
)

// Event is one message of a progress stream. Complete and Error are terminal.
type Event struct {
	Kind    Kind `json:"kind"`
	Payload any  `json:"payload"`
}

type ProgressPayload struct {
	Message string `json:"message"`
	Stage   string `json:"stage,omitempty"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Code    string `json:"code,omitempty"`
	Stage   string `json:"stage,omitempty"`
}

func (e Event) Terminal() bool {
	return e.Kind == KindComplete || e.Kind == KindError
}

func Progress(stage, message string) Event {
	return Event{Kind: KindProgress, Payload: ProgressPayload{Message: message, Stage: stage}}
}

func Complete(payload any) Event {
	return Event{Kind: KindComplete, Payload: payload}
}

func Error(p ErrorPayload) Event {
	return Event{Kind: KindError, Payload: p}
}
