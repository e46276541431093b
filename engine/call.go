package engine

// CallContext carries one function invocation across the boundary: receiver,
// arguments, construct flag, the kernel's dynamic closure payload, and the
// return slot. It is valid only for the duration of the call.
type CallContext struct {
	inst        *Instance
	region      *Region
	this        Value
	args        []Value
	isConstruct bool
	data        any
	ret         Value
}

// Instance returns the engine instance the call executes in.
func (cc *CallContext) Instance() *Instance {
	return cc.inst
}

// Region returns the lifetime region open for this call.
func (cc *CallContext) Region() *Region {
	return cc.region
}

// IsConstruct reports whether the function was invoked with new.
func (cc *CallContext) IsConstruct() bool {
	return cc.isConstruct
}

// This returns the receiver.
func (cc *CallContext) This() Value {
	return cc.this
}

// Length returns the argument count.
func (cc *CallContext) Length() int {
	return len(cc.args)
}

// Get returns the i-th argument, or undefined when out of range.
func (cc *CallContext) Get(i int) Value {
	if i < 0 || i >= len(cc.args) {
		return cc.region.Undefined()
	}
	return cc.args[i]
}

// Data returns the kernel's dynamic closure payload.
func (cc *CallContext) Data() any {
	return cc.data
}

// Invoke runs another kernel inside this call, swapping in that kernel's
// dynamic payload for the duration. Dispatch trampolines use this to route
// one engine invocation through construct or call kernels that each carry
// their own closure.
func (cc *CallContext) Invoke(k Kernel) {
	saved := cc.data
	cc.data = k.Dynamic
	k.Static(cc)
	cc.data = saved
}

// SetReturn sets the call's return value.
func (cc *CallContext) SetReturn(v Value) {
	cc.ret = v
}

// Return reads the current return value.
func (cc *CallContext) Return() Value {
	return cc.ret
}
