package engine

import (
	"unsafe"

	"github.com/wippyai/engine-bridge/errors"
)

// Region is a stack-nested lifetime region bounding how long transient
// handles remain valid. Regions are constructed in place in caller-provided
// storage and must be exited in strict reverse-creation order before control
// returns to the engine. That ordering is the caller's responsibility; the
// layer only detects violations when the debug harness is enabled.
type Region struct {
	inst      *Instance
	parent    *Region
	escapable bool
	escaped   bool
	open      bool
	depth     int
}

// RegionSize returns the storage size a caller must provide for a Region,
// so foreign callers can allocate without knowing engine internals.
func RegionSize() uintptr {
	return unsafe.Sizeof(Region{})
}

// RegionAlign returns the storage alignment required for a Region.
func RegionAlign() uintptr {
	return unsafe.Alignof(Region{})
}

// Enter constructs a plain lifetime region in r, nested inside the
// instance's currently-open region. Construction does not fail.
func Enter(r *Region, inst *Instance) {
	r.init(inst, false)
}

// Exit destroys the region. Transient handles created inside it become
// invalid.
func Exit(r *Region) {
	r.exit()
}

// EnterEscapable constructs an escapable region: one value may be promoted
// to the parent region through Escape before the region closes.
func EnterEscapable(r *Region, inst *Instance) {
	r.init(inst, true)
}

// ExitEscapable destroys an escapable region.
func ExitEscapable(r *Region) {
	r.exit()
}

func (r *Region) init(inst *Instance, escapable bool) {
	r.inst = inst
	r.parent = inst.top
	r.escapable = escapable
	r.escaped = false
	r.open = true
	if r.parent != nil {
		r.depth = r.parent.depth + 1
	} else {
		r.depth = 0
	}
	inst.top = r
	debugf("region enter depth=%d escapable=%v", r.depth, escapable)
}

func (r *Region) exit() {
	if r.inst.top != r {
		if debug {
			panic("engine: region exited out of LIFO order")
		}
		Logger().Warn("region exited out of LIFO order")
	}
	r.inst.top = r.parent
	r.open = false
	debugf("region exit depth=%d", r.depth)
}

// Instance returns the engine instance the region belongs to.
func (r *Region) Instance() *Instance {
	return r.inst
}

// Open reports whether the region is still live.
func (r *Region) Open() bool {
	return r.open
}

// Escape re-homes v into the enclosing region so it survives this region's
// exit. At most one value may escape per region; a second call is rejected.
func (r *Region) Escape(v Value) (Value, error) {
	if !r.escapable {
		return Value{}, errors.InvalidState(errors.PhaseScope, "region is not escapable")
	}
	if r.escaped {
		return Value{}, &errors.Error{
			Phase:  errors.PhaseScope,
			Kind:   errors.KindEscaped,
			Detail: "a value already escaped this region",
		}
	}
	if r.parent == nil {
		return Value{}, errors.InvalidState(errors.PhaseScope, "no enclosing region to escape into")
	}
	if v.rec == nil {
		return Value{}, errors.InvalidInput(errors.PhaseScope, "cannot escape an empty handle")
	}
	r.escaped = true
	return Value{rec: v.rec, region: r.parent}, nil
}

// Chained opens an escapable region, invokes fn, and promotes its result
// into the enclosing region before closing. It exists so callers can express
// "produce one value under a fresh lifetime" without manually pairing
// enter/exit and escape.
func Chained(inst *Instance, fn func(r *Region) (Value, error)) (Value, error) {
	var r Region
	EnterEscapable(&r, inst)
	defer ExitEscapable(&r)

	v, err := fn(&r)
	if err != nil {
		return Value{}, err
	}
	return r.Escape(v)
}

// Nested opens a plain region around fn. Handles created inside do not
// survive the call.
func Nested(inst *Instance, fn func(r *Region) error) error {
	var r Region
	Enter(&r, inst)
	defer Exit(&r)
	return fn(&r)
}
