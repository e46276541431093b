package runtime

import (
	"context"
	"reflect"

	"github.com/wippyai/engine-bridge/class"
	"github.com/wippyai/engine-bridge/engine"
	"github.com/wippyai/engine-bridge/errors"
	"github.com/wippyai/engine-bridge/handle"
	"github.com/wippyai/engine-bridge/task"
)

// Runtime bundles one engine instance with a task scheduler behind a
// convenience API. The lower packages stay fully usable on their own; the
// runtime only orchestrates.
type Runtime struct {
	inst  *engine.Instance
	sched *task.Scheduler
}

type config struct {
	workers int
}

// Option configures a Runtime.
type Option func(*config)

// WithWorkers sets the background pool size.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

// New creates a runtime with a fresh engine instance.
func New(opts ...Option) (*Runtime, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	inst := engine.NewInstance()
	return &Runtime{
		inst:  inst,
		sched: task.NewScheduler(inst, cfg.workers),
	}, nil
}

// Instance returns the underlying engine instance.
func (r *Runtime) Instance() *engine.Instance {
	return r.inst
}

// Scheduler returns the task scheduler.
func (r *Runtime) Scheduler() *task.Scheduler {
	return r.sched
}

// Close drains the scheduler, processes completions already marshaled onto
// the engine thread, and tears the instance down. Must be called from the
// engine thread.
func (r *Runtime) Close(ctx context.Context) error {
	r.sched.Close()
	for r.sched.Outstanding() > 0 {
		if err := r.inst.ProcessOne(ctx); err != nil {
			break
		}
	}
	r.inst.ProcessUntilIdle()
	return r.inst.Close()
}

// WithScope runs fn under a fresh plain lifetime region.
func (r *Runtime) WithScope(fn func(reg *engine.Region) error) error {
	return engine.Nested(r.inst, fn)
}

// WithEscapableScope runs fn under an escapable region and promotes its
// result into the caller's region, which must already be open.
func (r *Runtime) WithEscapableScope(fn func(reg *engine.Region) (engine.Value, error)) (engine.Value, error) {
	return engine.Chained(r.inst, fn)
}

// DefineClass registers a foreign-backed class under the given type key,
// creating the per-instance class map lazily on first registration.
func (r *Runtime) DefineClass(key reflect.Type, name string, allocate class.AllocateKernel, construct, call engine.Kernel, drop class.DropFunc) (*class.BaseClassMetadata, error) {
	if key == nil {
		return nil, errors.InvalidInput(errors.PhaseClass, "class key is required")
	}

	m := class.GetClassMap(r.inst)
	if m == nil {
		m = class.NewMap()
		if err := class.SetClassMap(r.inst, m, nil); err != nil {
			return nil, err
		}
	}

	md, err := class.CreateBase(r.inst, allocate, construct, call, drop)
	if err != nil {
		return nil, err
	}
	if name != "" {
		if err := md.SetName([]byte(name)); err != nil {
			return nil, err
		}
	}
	if err := m.Register(key, md); err != nil {
		return nil, err
	}
	return md, nil
}

// LookupClass returns the metadata registered for a foreign type key.
func (r *Runtime) LookupClass(key reflect.Type) (*class.BaseClassMetadata, bool) {
	m := class.GetClassMap(r.inst)
	if m == nil {
		return nil, false
	}
	return m.Lookup(key)
}

// Schedule hands a unit of work to the background pool.
func (r *Runtime) Schedule(payload any, perform task.PerformFunc, complete task.CompleteFunc, callback *handle.Persistent) error {
	return r.sched.Schedule(payload, perform, complete, callback)
}
