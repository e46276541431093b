// Package engine models the boundary surface of one embedded engine
// instance: its value records, transient handles, lifetime regions,
// instance-local data slots, teardown hooks, global reference table,
// function templates, and the completion channel that marshals background
// work back onto the engine thread.
//
// The engine itself (heap, collector, execution) is out of scope; this
// package owns only what the bridge needs to answer ownership and lifetime
// questions about values crossing the boundary.
//
// # Lifetime Regions
//
// Transient handles are valid only inside the region that created them.
// Regions are constructed in place in caller-provided storage and must exit
// in strict LIFO order:
//
//	var r engine.Region
//	engine.Enter(&r, inst)
//	defer engine.Exit(&r)
//
//	n := r.Number(42)
//
// An escapable region can promote exactly one value to its parent before
// closing. The Chained and Nested helpers pair enter/exit automatically.
//
// # Threading
//
// Every operation in this package must run on the engine thread, with the
// single exception of Channel.Send. No internal locking protects the
// reference table or the region stack; correctness depends on the caller
// honoring that contract.
package engine
