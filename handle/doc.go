// Package handle provides the persistent handle store: explicitly managed
// references to engine values that outlive any lifetime region and may
// cross foreign call boundaries.
//
// A Persistent slot follows a strict lifecycle:
//
//	p := handle.New()          // empty
//	p.Init(inst, v)            // captures v into the instance ref table
//	local, _ := p.Read(region) // transient handle, valid inside region
//	p.Reset(other)             // repoint at a different value
//	p.Drop()                   // release; the slot is retired for good
//
// Init, Reset, and Drop mutate the instance-global reference table and must
// run on the engine thread. A dropped slot is guarded by a sentinel: any
// further use fails with a structured error instead of dangling.
package handle
