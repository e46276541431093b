package engine

import (
	"github.com/wippyai/engine-bridge/errors"
)

// CallFunc is the static entry point of a callback kernel.
type CallFunc func(cc *CallContext)

// Kernel is a callback bundle crossing the foreign boundary: a static entry
// point plus an optional opaque closure payload for dynamically-defined
// behaviors. Both stateless and closure-capturing callbacks flow through the
// same invocation path; the payload is retrievable from the CallContext.
type Kernel struct {
	Static  CallFunc
	Dynamic any
}

// Defined reports whether the kernel carries an entry point.
func (k Kernel) Defined() bool {
	return k.Static != nil
}

// FunctionTemplate owns the definition of an engine-visible function: its
// kernel, display name, and prototype object. A template materializes at
// most one function value, cached for the template's whole lifetime.
type FunctionTemplate struct {
	inst   *Instance
	kernel Kernel
	name   string
	proto  *record
	fn     *record
}

// NewFunctionTemplate creates a function template from a callback kernel.
func NewFunctionTemplate(inst *Instance, kernel Kernel) (*FunctionTemplate, error) {
	if !kernel.Defined() {
		return nil, errors.InvalidInput(errors.PhaseCall, "kernel has no static entry point")
	}
	t := &FunctionTemplate{
		inst:   inst,
		kernel: kernel,
		proto:  newObjectRecord(nil),
	}
	return t, nil
}

// SetClassName sets the engine-visible display name.
func (t *FunctionTemplate) SetClassName(name string) {
	t.name = name
	if t.fn != nil {
		t.fn.fnName = name
	}
}

// ClassName returns the display name.
func (t *FunctionTemplate) ClassName() string {
	return t.name
}

// PrototypeSet installs a method on the template's prototype object. A
// repeated name overrides the previous entry, last write wins.
func (t *FunctionTemplate) PrototypeSet(name string, method *FunctionTemplate) {
	t.proto.props[name] = method.functionRecord()
}

// Function materializes the template's function value in r.
func (t *FunctionTemplate) Function(r *Region) (Value, error) {
	r.use()
	return Value{rec: t.functionRecord(), region: r}, nil
}

// HasInstance reports whether v was constructed through this template, by
// walking its prototype chain.
func (t *FunctionTemplate) HasInstance(v Value) bool {
	if v.rec == nil {
		return false
	}
	for cur := v.rec.proto; cur != nil; cur = cur.proto {
		if cur == t.proto {
			return true
		}
	}
	return false
}

func (t *FunctionTemplate) functionRecord() *record {
	if t.fn == nil {
		t.fn = &record{
			kind:     KindFunction,
			kernel:   t.kernel,
			template: t,
			fnName:   t.name,
			props:    map[string]*record{"prototype": t.proto},
		}
		t.proto.props["constructor"] = t.fn
	}
	return t.fn
}

// NewFunction creates a standalone function value from a kernel, with no
// template or prototype of its own.
func NewFunction(r *Region, kernel Kernel) (Value, error) {
	r.use()
	if !kernel.Defined() {
		return Value{}, errors.InvalidInput(errors.PhaseCall, "kernel has no static entry point")
	}
	rec := &record{
		kind:   KindFunction,
		kernel: kernel,
		props:  make(map[string]*record),
	}
	return Value{rec: rec, region: r}, nil
}

// Call invokes fn as a plain call with the given receiver and arguments.
// If the kernel leaves an exception pending, Call surfaces failure without
// inspecting or clearing the thrown value; inspection is the caller's.
func Call(r *Region, fn, self Value, args ...Value) (Value, error) {
	if fn.Kind() != KindFunction {
		return Value{}, errors.TypeMismatch(errors.PhaseCall, "function", fn.Kind().String())
	}

	cc := &CallContext{
		inst:   r.inst,
		region: r,
		this:   self,
		args:   args,
		data:   fn.rec.kernel.Dynamic,
		ret:    r.Undefined(),
	}
	fn.rec.kernel.Static(cc)

	if r.inst.HasPending() {
		return Value{}, errors.Exception(errors.PhaseCall, nil)
	}
	return cc.ret, nil
}

// Construct invokes fn as a constructor: a fresh object linked to the
// function's prototype becomes the receiver, the kernel runs with the
// construct flag set, and the new object is returned unless the kernel
// explicitly returned another object.
func Construct(r *Region, fn Value, args ...Value) (Value, error) {
	if fn.Kind() != KindFunction {
		return Value{}, errors.TypeMismatch(errors.PhaseCall, "function", fn.Kind().String())
	}

	var proto *record
	if fn.rec.template != nil {
		proto = fn.rec.template.proto
	}
	this := Value{rec: newObjectRecord(proto), region: r}

	cc := &CallContext{
		inst:        r.inst,
		region:      r,
		this:        this,
		args:        args,
		isConstruct: true,
		data:        fn.rec.kernel.Dynamic,
		ret:         r.Undefined(),
	}
	fn.rec.kernel.Static(cc)

	if r.inst.HasPending() {
		return Value{}, errors.Exception(errors.PhaseCall, nil)
	}
	if cc.ret.IsObject() {
		return cc.ret, nil
	}
	return this, nil
}
