package handle

import (
	"github.com/wippyai/engine-bridge/engine"
	"github.com/wippyai/engine-bridge/errors"
)

// Persistent is a long-lived reference to an engine value, independent of
// any lifetime region. A slot is either empty or valid; after Drop it is
// retired and must never be read again. The foreign caller is the sole
// owner: no reference counting happens here, and exactly one Drop per
// initialized slot is the caller's responsibility. Several Persistents may
// capture the same underlying value.
type Persistent struct {
	inst    *engine.Instance
	ref     engine.RefHandle
	dropped bool
}

// New default-constructs an empty slot.
func New() *Persistent {
	return &Persistent{}
}

// Empty reports whether the slot holds no reference.
func (p *Persistent) Empty() bool {
	return p.ref == 0
}

// Init captures v into inst's global reference table. The slot must be
// empty.
func (p *Persistent) Init(inst *engine.Instance, v engine.Value) error {
	if p.dropped {
		return errors.Dropped(errors.PhaseHandle, "persistent slot")
	}
	if p.ref != 0 {
		return errors.InvalidState(errors.PhaseHandle, "slot already initialized")
	}
	h, err := inst.RefCreate(v)
	if err != nil {
		return err
	}
	p.inst = inst
	p.ref = h
	return nil
}

// Reset replaces the captured value, capturing v fresh if the slot is
// empty. The slot's engine instance is taken from v's region on first use.
func (p *Persistent) Reset(v engine.Value) error {
	if p.dropped {
		return errors.Dropped(errors.PhaseHandle, "persistent slot")
	}
	if p.ref == 0 {
		if v.Region() == nil {
			return errors.InvalidInput(errors.PhaseHandle, "cannot capture an empty handle")
		}
		return p.Init(v.Region().Instance(), v)
	}
	return p.inst.RefUpdate(p.ref, v)
}

// Read materializes the captured value as a transient handle valid only
// within r, which must be an open region of the owning instance.
func (p *Persistent) Read(r *engine.Region) (engine.Value, error) {
	if p.dropped {
		return engine.Value{}, errors.Dropped(errors.PhaseHandle, "persistent slot")
	}
	if p.ref == 0 {
		return engine.Value{}, errors.InvalidState(errors.PhaseHandle, "slot is empty")
	}
	return p.inst.RefRead(r, p.ref)
}

// Drop releases the captured reference and retires the slot. The sentinel
// makes any later Read, Reset, or Init fail rather than dangle.
func (p *Persistent) Drop() error {
	if p.dropped {
		return errors.Dropped(errors.PhaseHandle, "persistent slot")
	}
	p.dropped = true
	if p.ref == 0 {
		return nil
	}
	err := p.inst.RefDrop(p.ref)
	p.ref = 0
	p.inst = nil
	return err
}

// Call would invoke a captured function through persistent handles alone,
// with no open region. The underlying layer never implemented this path;
// it fails deliberately rather than guessing at semantics.
func Call(p *Persistent, self *Persistent, args ...*Persistent) (*Persistent, error) {
	return nil, errors.Unsupported(errors.PhaseCall, "thin persistent call")
}

// Construct is the constructor analog of Call and is likewise
// unimplemented.
func Construct(p *Persistent, args ...*Persistent) (*Persistent, error) {
	return nil, errors.Unsupported(errors.PhaseCall, "thin persistent construct")
}
