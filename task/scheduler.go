package task

import (
	"sync"
	"sync/atomic"

	"github.com/wippyai/engine-bridge/engine"
	"github.com/wippyai/engine-bridge/errors"
	"github.com/wippyai/engine-bridge/handle"
)

const (
	defaultWorkers   = 4
	defaultQueueSize = 256
)

// Scheduler hands foreign work to a background worker pool and marshals
// each result back onto the engine thread through the instance's completion
// channel. Once scheduled, a task always runs both phases; no cancellation
// primitive exists.
type Scheduler struct {
	inst  *engine.Instance
	tasks chan *Task
	wg    sync.WaitGroup

	outstanding atomic.Int64

	mu     sync.Mutex
	closed bool
}

// NewScheduler starts a scheduler with the given pool size (a non-positive
// value selects the default).
func NewScheduler(inst *engine.Instance, workers int) *Scheduler {
	if workers <= 0 {
		workers = defaultWorkers
	}
	s := &Scheduler{
		inst:  inst,
		tasks: make(chan *Task, defaultQueueSize),
	}
	s.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go s.worker()
	}
	return s
}

// Schedule constructs a Task and enqueues it. The callback reference is
// owned by the task from this point on: the bridge drops it after complete
// returns.
func (s *Scheduler) Schedule(payload any, perform PerformFunc, complete CompleteFunc, callback *handle.Persistent) error {
	if perform == nil || complete == nil {
		return errors.InvalidInput(errors.PhaseTask, "perform and complete callbacks are required")
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.Closed(errors.PhaseTask, "scheduler")
	}
	s.outstanding.Add(1)
	s.mu.Unlock()

	t := &Task{
		payload:  payload,
		perform:  perform,
		complete: complete,
		callback: callback,
	}
	s.tasks <- t
	return nil
}

// Outstanding returns the number of tasks scheduled but not yet completed.
func (s *Scheduler) Outstanding() int {
	return int(s.outstanding.Load())
}

// Close stops intake and waits for the worker pool to drain. Completions
// already posted still need the engine thread to process them.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.tasks)
	s.wg.Wait()
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for t := range s.tasks {
		s.run(t)
	}
}

func (s *Scheduler) run(t *Task) {
	if !t.transition(StateQueued, StateRunning) {
		return
	}

	result := t.perform(t.payload)

	if !t.transition(StateRunning, StateCompleting) {
		return
	}

	err := s.inst.Channel().Send(func(r *engine.Region) {
		t.complete(r, result, t.payload, t.callback)
		t.state.Store(int32(StateDone))
		if t.callback != nil {
			if err := t.callback.Drop(); err != nil {
				Logger().Warn("dropping task callback", zapError(err))
			}
		}
		s.outstanding.Add(-1)
	})
	if err != nil {
		// Instance closed underneath us; the completion can never run.
		t.state.Store(int32(StateDone))
		s.outstanding.Add(-1)
		Logger().Warn("completion channel rejected task", zapError(err))
	}
}
