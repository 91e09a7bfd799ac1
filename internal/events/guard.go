package events

import (
	"context"
	"sync"
)

type guarded struct {
	mu     sync.Mutex
	next   Emitter
	closed bool
}

// Guard wraps e so that nothing is delivered after the first terminal event.
func Guard(e Emitter) Emitter {
	return &guarded{next: e}
}

func (g *guarded) Emit(ctx context.Context, e Event) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return ErrClosed
	}
	if e.Terminal() {
		g.closed = true
	}
	return g.next.Emit(ctx, e)
}
