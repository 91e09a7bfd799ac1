package events

import (
	"context"
	"errors"
)

// ErrClosed is returned when emitting after the terminal event.
var ErrClosed = errors.New("event stream closed")

// Emitter delivers pipeline events to one caller, in order.
type Emitter interface {
	Emit(ctx context.Context, e Event) error
}
