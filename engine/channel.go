package engine

import (
	"context"
	"sync"

	"github.com/wippyai/engine-bridge/errors"
)

const defaultQueueDepth = 1024

// Channel schedules closures to execute on the engine thread. Send is safe
// to call from any goroutine; everything else about the instance is not.
// Queued closures run inside a fresh lifetime region, serialized with all
// other engine-thread activity, when the engine thread drains the queue.
type Channel struct {
	inst *Instance
	ch   chan func(*Region)

	mu     sync.Mutex
	closed bool
}

func newChannel(inst *Instance, depth int) *Channel {
	return &Channel{
		inst: inst,
		ch:   make(chan func(*Region), depth),
	}
}

// Send enqueues fn for the engine thread. It blocks when the queue is full
// and fails once the instance has closed.
func (c *Channel) Send(fn func(r *Region)) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return errors.Closed(errors.PhaseTask, "completion channel")
	}
	c.mu.Unlock()

	c.ch <- fn
	return nil
}

// Pending returns the number of queued closures not yet dispatched.
func (c *Channel) Pending() int {
	return len(c.ch)
}

func (c *Channel) close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Channel) dispatch(fn func(r *Region)) {
	var r Region
	Enter(&r, c.inst)
	defer Exit(&r)
	fn(&r)
}

// ProcessOne blocks until one queued closure has been dispatched on the
// calling goroutine, which must be the engine thread.
func (i *Instance) ProcessOne(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case fn := <-i.queue.ch:
		i.queue.dispatch(fn)
		return nil
	}
}

// ProcessUntilIdle drains every closure already queued without blocking and
// returns how many were dispatched.
func (i *Instance) ProcessUntilIdle() int {
	n := 0
	for {
		select {
		case fn := <-i.queue.ch:
			i.queue.dispatch(fn)
			n++
		default:
			return n
		}
	}
}
