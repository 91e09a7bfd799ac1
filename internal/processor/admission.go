package processor

import (
	"context"
	"sync/atomic"
)

// admission bounds how many pipelines run at once. Runs that cannot enter
// immediately are counted as waiting until they get a slot or give up.
type admission struct {
	slots   chan struct{}
	waiting atomic.Int64
}

func newAdmission(maxRunning int) *admission {
	return &admission{slots: make(chan struct{}, maxRunning)}
}

func (a *admission) tryEnter() bool {
	select {
	case a.slots <- struct{}{}:
		return true
	default:
		return false
	}
}

// wait blocks until a slot frees up or ctx is done.
func (a *admission) wait(ctx context.Context) error {
	a.waiting.Add(1)
	defer a.waiting.Add(-1)

	select {
	case a.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *admission) leave() {
	<-a.slots
}

// queued reports how many runs are blocked in wait.
func (a *admission) queued() int64 {
	return a.waiting.Load()
}

func (a *admission) running() int {
	return len(a.slots)
}
