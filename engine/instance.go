package engine

import (
	"github.com/wippyai/engine-bridge/errors"
)

// DataSlot identifies an instance-local storage slot. Slot assignments are
// process-wide conventions between the bridge layers; the class registry
// reserves slot 0.
type DataSlot uint32

// Instance is one isolated engine instance: its own heap of value records,
// instance-local data slots, global reference table, pending exception, and
// completion channel.
//
// All methods except Channel().Send must be called from the engine thread.
type Instance struct {
	refs    refTable
	slots   map[DataSlot]any
	atExit  []func()
	pending *record
	top     *Region
	queue   *Channel
	closed  bool

	// engine singletons, so identity comparison holds for primitives that
	// the engine interns
	undefinedRec *record
	nullRec      *record
	trueRec      *record
	falseRec     *record
}

// NewInstance creates a fresh engine instance.
func NewInstance() *Instance {
	inst := &Instance{
		slots:        make(map[DataSlot]any),
		undefinedRec: &record{kind: KindUndefined},
		nullRec:      &record{kind: KindNull},
		trueRec:      &record{kind: KindBoolean, b: true},
		falseRec:     &record{kind: KindBoolean},
	}
	inst.queue = newChannel(inst, defaultQueueDepth)
	return inst
}

// SetData stores v in an instance-local slot.
func (i *Instance) SetData(slot DataSlot, v any) {
	i.slots[slot] = v
}

// Data returns the value stored in an instance-local slot, or nil.
func (i *Instance) Data(slot DataSlot) any {
	return i.slots[slot]
}

// AtExit registers fn to run exactly once when the instance closes.
// Hooks run in reverse registration order.
func (i *Instance) AtExit(fn func()) {
	i.atExit = append(i.atExit, fn)
}

// Channel returns the instance's completion channel.
func (i *Instance) Channel() *Channel {
	return i.queue
}

// Current returns the innermost open lifetime region, or nil.
func (i *Instance) Current() *Region {
	return i.top
}

// Closed reports whether the instance has been torn down.
func (i *Instance) Closed() bool {
	return i.closed
}

// Close tears the instance down: the completion channel stops accepting
// work, teardown hooks run LIFO, and the reference table is released.
// Close is idempotent.
func (i *Instance) Close() error {
	if i.closed {
		return nil
	}
	i.closed = true

	i.queue.close()

	for n := len(i.atExit) - 1; n >= 0; n-- {
		i.atExit[n]()
	}
	i.atExit = nil

	i.refs.close()
	i.slots = nil
	i.pending = nil
	return nil
}

// SetPending records v as the pending exception for the current execution
// context, replacing any previous one.
func (i *Instance) SetPending(v Value) {
	i.pending = v.rec
}

// HasPending reports whether an exception is pending.
func (i *Instance) HasPending() bool {
	return i.pending != nil
}

// Pending materializes the pending exception in r without clearing it.
func (i *Instance) Pending(r *Region) (Value, bool) {
	if i.pending == nil {
		return Value{}, false
	}
	return Value{rec: i.pending, region: r}, true
}

// TakePending materializes and clears the pending exception.
func (i *Instance) TakePending(r *Region) (Value, bool) {
	v, ok := i.Pending(r)
	i.pending = nil
	return v, ok
}

// ClearPending drops any pending exception.
func (i *Instance) ClearPending() {
	i.pending = nil
}

// RefCreate captures v into the instance's global reference table and
// returns its handle. The resulting reference is independent of any region.
func (i *Instance) RefCreate(v Value) (RefHandle, error) {
	if v.rec == nil {
		return 0, errors.InvalidInput(errors.PhaseHandle, "cannot capture an empty handle")
	}
	return i.refs.create(v.rec)
}

// RefRead materializes the referenced value as a transient handle in r.
func (i *Instance) RefRead(r *Region, h RefHandle) (Value, error) {
	rec, ok := i.refs.get(h)
	if !ok {
		return Value{}, errors.NotFound(errors.PhaseHandle, "reference handle")
	}
	return Value{rec: rec, region: r}, nil
}

// RefUpdate repoints an existing reference at v's underlying value.
func (i *Instance) RefUpdate(h RefHandle, v Value) error {
	if v.rec == nil {
		return errors.InvalidInput(errors.PhaseHandle, "cannot capture an empty handle")
	}
	if !i.refs.update(h, v.rec) {
		return errors.NotFound(errors.PhaseHandle, "reference handle")
	}
	return nil
}

// RefDrop releases a reference table entry.
func (i *Instance) RefDrop(h RefHandle) error {
	if !i.refs.drop(h) {
		return errors.NotFound(errors.PhaseHandle, "reference handle")
	}
	return nil
}

// RefCount returns the number of live entries in the reference table.
func (i *Instance) RefCount() int {
	return i.refs.len()
}
