package task

import (
	"sync/atomic"

	"github.com/wippyai/engine-bridge/engine"
	"github.com/wippyai/engine-bridge/handle"
)

// State tracks a task through its lifecycle. Transitions are monotonic:
// Queued -> Running -> Completing -> Done, each taken exactly once.
type State int32

const (
	StateQueued State = iota
	StateRunning
	StateCompleting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateRunning:
		return "running"
	case StateCompleting:
		return "completing"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// PerformFunc runs on a background pool goroutine. It must not touch any
// engine handle, metadata, or persistent reference; it receives the opaque
// foreign payload and produces a plain result. Errors during foreign work
// travel inside the payload or result itself, since no exception channel
// crosses the thread hop.
type PerformFunc func(payload any) any

// CompleteFunc runs on the engine thread, inside a fresh lifetime region,
// with the perform result and the original payload. It is responsible for
// invoking the stored completion function with whatever engine-visible
// arguments it constructs.
type CompleteFunc func(r *engine.Region, result, payload any, callback *handle.Persistent)

// Task is one unit of asynchronous work handed to the engine's background
// queue.
type Task struct {
	payload  any
	perform  PerformFunc
	complete CompleteFunc
	callback *handle.Persistent
	state    atomic.Int32
}

// State returns the task's current lifecycle state.
func (t *Task) State() State {
	return State(t.state.Load())
}

func (t *Task) transition(from, to State) bool {
	return t.state.CompareAndSwap(int32(from), int32(to))
}
