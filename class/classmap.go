package class

import (
	"reflect"

	"github.com/wippyai/engine-bridge/engine"
	"github.com/wippyai/engine-bridge/errors"
)

// classMapSlot is the reserved instance-local data slot holding the
// per-instance class registry.
const classMapSlot engine.DataSlot = 0

// Map is the per-engine-instance class registry, keyed by foreign type
// identity. An entry, once registered, is stable for the lifetime of its
// instance.
type Map struct {
	classes map[reflect.Type]*BaseClassMetadata
}

// NewMap creates an empty class registry.
func NewMap() *Map {
	return &Map{classes: make(map[reflect.Type]*BaseClassMetadata)}
}

// Register binds a foreign type to its class metadata. Re-registering a
// type is a registration error: entries never change once installed.
func (m *Map) Register(key reflect.Type, md *BaseClassMetadata) error {
	if _, ok := m.classes[key]; ok {
		return errors.Registration(errors.PhaseClass, key.String(),
			errors.InvalidState(errors.PhaseClass, "type already registered"))
	}
	m.classes[key] = md
	return nil
}

// Lookup returns the metadata registered for a foreign type.
func (m *Map) Lookup(key reflect.Type) (*BaseClassMetadata, bool) {
	md, ok := m.classes[key]
	return md, ok
}

// Len returns the number of registered classes.
func (m *Map) Len() int {
	return len(m.classes)
}

// GetClassMap returns the instance's class registry, or nil before
// SetClassMap ran.
func GetClassMap(inst *engine.Instance) *Map {
	m, _ := inst.Data(classMapSlot).(*Map)
	return m
}

// SetClassMap installs the per-instance registry exactly once and binds its
// teardown to the instance itself: drop runs exactly once when the instance
// closes, never earlier and never per-region. Class state must outlive any
// single call but must not leak across isolated engine instances, so the
// registry's lifetime is the instance's, not a scope's and not the
// process's.
func SetClassMap(inst *engine.Instance, m *Map, drop func(*Map)) error {
	if inst.Data(classMapSlot) != nil {
		return errors.InvalidState(errors.PhaseClass, "class map already installed")
	}
	inst.SetData(classMapSlot, m)
	inst.AtExit(func() {
		if drop != nil {
			drop(m)
		}
	})
	return nil
}
