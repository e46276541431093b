// Package class lets a foreign type masquerade as a first-class engine
// class with foreign-owned backing storage.
//
// A class is described by metadata: a display name, three callback bundles
// (allocate, construct, call), two cached error templates, and one engine
// function template owned for the metadata's whole lifetime. The dispatch
// trampoline installed by CreateBase distinguishes new-invocation from
// plain call at invocation time:
//
//	new C(...)  ->  allocate -> bind internals -> construct
//	C(...)      ->  call kernel, or the cached "called without new" error
//
// Construction binds the foreign instance data into the object's single
// reserved internal slot before the construct kernel runs, so construct may
// itself read the bound internals. Internals retrieves them later.
//
// Per-instance registration goes through the ClassMap, stored in a reserved
// instance-local slot and torn down exactly once when the owning engine
// instance closes.
package class
