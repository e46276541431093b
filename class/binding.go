package class

import (
	"github.com/wippyai/engine-bridge/engine"
)

// Internals returns the foreign instance data bound into an engine object's
// reserved internal slot. It is only defined for objects constructed
// through a class registered with this package; calling it on anything else
// returns nil with ok false.
//
// The slot is written exactly once, by the dispatch trampoline before the
// construct kernel runs, and is read-only thereafter.
func Internals(obj engine.Value) (any, bool) {
	return engine.Internal(obj)
}
