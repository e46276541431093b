package class

import (
	"unicode/utf8"

	"github.com/wippyai/engine-bridge/engine"
	"github.com/wippyai/engine-bridge/errors"
)

// Default error texts, cached per class and overridable through SetName.
const (
	defaultCallError = "constructor called without new."
	defaultThisError = "this is not an object of the expected type."
)

// AllocateFunc produces the foreign instance data for one construction.
type AllocateFunc func(cc *engine.CallContext) (any, error)

// AllocateKernel is the allocate callback bundle: static entry point plus
// optional dynamic closure payload.
type AllocateKernel struct {
	Static  AllocateFunc
	Dynamic any
}

// DropFunc releases foreign instance data when its owner is done with it.
type DropFunc func(internals any)

// ClassMetadata describes a foreign-backed engine class: display name,
// construct and call kernels, cached error templates, and the one engine
// function template the class owns for its entire lifetime.
type ClassMetadata struct {
	name      string
	construct engine.Kernel
	call      engine.Kernel
	callErr   string
	thisErr   string
	template  *engine.FunctionTemplate
}

// BaseClassMetadata is the root class variant. It always carries an
// allocate kernel; derived classes reuse its dispatch shape with kernels of
// their own.
type BaseClassMetadata struct {
	ClassMetadata
	allocate AllocateKernel
	drop     DropFunc
}

// CreateBase registers a new root class. The installed dispatch routes a
// new-invocation through allocate, binds the produced internals into the
// instance's reserved slot, then runs construct (which may already read the
// bound internals); a plain call routes to the call kernel, or throws the
// cached call error when none exists.
func CreateBase(inst *engine.Instance, allocate AllocateKernel, construct, call engine.Kernel, drop DropFunc) (*BaseClassMetadata, error) {
	if allocate.Static == nil {
		return nil, errors.InvalidInput(errors.PhaseClass, "base class requires an allocate kernel")
	}

	md := &BaseClassMetadata{
		ClassMetadata: ClassMetadata{
			construct: construct,
			call:      call,
			callErr:   defaultCallError,
			thisErr:   defaultThisError,
		},
		allocate: allocate,
		drop:     drop,
	}

	tmpl, err := engine.NewFunctionTemplate(inst, engine.Kernel{
		Static:  md.dispatch,
		Dynamic: md,
	})
	if err != nil {
		return nil, err
	}
	md.template = tmpl
	return md, nil
}

func (md *BaseClassMetadata) dispatch(cc *engine.CallContext) {
	if !cc.IsConstruct() {
		if md.call.Defined() {
			cc.Invoke(md.call)
			return
		}
		md.ThrowCallError(cc.Region())
		return
	}

	internals, err := md.invokeAllocate(cc)
	if err != nil {
		throwType(cc.Region(), err.Error())
		return
	}
	if err := engine.SetInternal(cc.This(), internals); err != nil {
		throwType(cc.Region(), err.Error())
		return
	}
	if md.construct.Defined() {
		cc.Invoke(md.construct)
	}
}

func (md *BaseClassMetadata) invokeAllocate(cc *engine.CallContext) (any, error) {
	return md.allocate.Static(cc)
}

// AllocateKernel returns the class's allocate callback bundle.
func (md *BaseClassMetadata) AllocateKernel() AllocateKernel {
	return md.allocate
}

// DropInstance releases foreign instance data through the registered drop
// callback, if any.
func (md *BaseClassMetadata) DropInstance(internals any) {
	if md.drop != nil {
		md.drop(internals)
	}
}

// Derive creates a derived class sharing the base allocate behavior but
// carrying its own construct and call kernels.
func (md *BaseClassMetadata) Derive(inst *engine.Instance, construct, call engine.Kernel) (*ClassMetadata, error) {
	derived := &ClassMetadata{
		construct: construct,
		call:      call,
		callErr:   defaultCallError,
		thisErr:   defaultThisError,
	}

	base := md
	tmpl, err := engine.NewFunctionTemplate(inst, engine.Kernel{
		Static: func(cc *engine.CallContext) {
			if !cc.IsConstruct() {
				if derived.call.Defined() {
					cc.Invoke(derived.call)
					return
				}
				derived.ThrowCallError(cc.Region())
				return
			}
			internals, err := base.invokeAllocate(cc)
			if err != nil {
				throwType(cc.Region(), err.Error())
				return
			}
			if err := engine.SetInternal(cc.This(), internals); err != nil {
				throwType(cc.Region(), err.Error())
				return
			}
			if derived.construct.Defined() {
				cc.Invoke(derived.construct)
			}
		},
		Dynamic: derived,
	})
	if err != nil {
		return nil, err
	}
	derived.template = tmpl
	return derived, nil
}

// Template returns the class's function template.
func (md *ClassMetadata) Template() *engine.FunctionTemplate {
	return md.template
}

// ConstructKernel returns the construct callback bundle.
func (md *ClassMetadata) ConstructKernel() engine.Kernel {
	return md.construct
}

// CallKernel returns the plain-call callback bundle.
func (md *ClassMetadata) CallKernel() engine.Kernel {
	return md.call
}

// SetName sets the class's engine-visible display name from a
// byte-delimited UTF-8 buffer and refreshes the cached error templates.
func (md *ClassMetadata) SetName(name []byte) error {
	if !utf8.Valid(name) {
		return errors.InvalidUTF8(errors.PhaseClass, name)
	}
	md.name = string(name)
	md.template.SetClassName(md.name)
	md.callErr = md.name + " " + defaultCallError
	md.thisErr = md.name + ": " + defaultThisError
	return nil
}

// GetName returns the display name.
func (md *ClassMetadata) GetName() string {
	return md.name
}

// Constructor materializes the class constructor function in r.
func (md *ClassMetadata) Constructor(r *engine.Region) (engine.Value, error) {
	return md.template.Function(r)
}

// AddMethod installs a prototype method. Name collisions follow the
// engine's override semantics: last write wins.
func (md *ClassMetadata) AddMethod(name []byte, method *engine.FunctionTemplate) error {
	if !utf8.Valid(name) {
		return errors.InvalidUTF8(errors.PhaseClass, name)
	}
	md.template.PrototypeSet(string(name), method)
	return nil
}

// HasInstance reports whether v was constructed by this class, via the
// prototype chain.
func (md *ClassMetadata) HasInstance(v engine.Value) bool {
	return md.template.HasInstance(v)
}

// ThrowCallError raises the cached "called without new" TypeError.
func (md *ClassMetadata) ThrowCallError(r *engine.Region) {
	throwType(r, md.callErr)
}

// ThrowThisError raises the cached "wrong receiver type" TypeError.
func (md *ClassMetadata) ThrowThisError(r *engine.Region) {
	throwType(r, md.thisErr)
}

func throwType(r *engine.Region, msg string) {
	v := engine.NewErrorValue(r, engine.ErrType, msg)
	r.Instance().SetPending(v)
}
