// Package enginebridge provides a lifetime and identity bridge between a
// foreign caller and an embedded, garbage-collected script engine instance.
//
// The bridge answers one question for every value that crosses the boundary:
// who owns it, for how long, and which thread may touch it. It does not
// reproduce the engine itself (its heap, collector, or execution semantics);
// it manages the boundary to it.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	engine-bridge/       Root package with the binary ABI version query
//	├── engine/          Engine-instance model: value records, transient
//	│                    handles, lifetime regions, reference table,
//	│                    completion channel, function templates
//	├── handle/          Persistent handle store (explicit create/destroy
//	│                    references that outlive any region)
//	├── class/           Class metadata registry and instance binding for
//	│                    foreign-backed engine classes
//	├── task/            Background task bridge (off-thread perform,
//	│                    engine-thread complete)
//	├── exception/       Error translation into engine exception values
//	├── runtime/         High-level API bundling an instance and scheduler
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Open an instance, do work under a scope, and tear down:
//
//	rt, err := runtime.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(context.Background())
//
//	err = rt.WithScope(func(r *engine.Region) error {
//	    obj := r.Object()
//	    name, _ := r.String("alice")
//	    _, err := engine.SetString(r, obj, []byte("name"), name)
//	    return err
//	})
//
// # Ownership Model
//
// Two handle flavors exist:
//
//   - Transient (engine.Value): borrowed, bound to the lifetime region it was
//     created in, invalid once that region exits.
//   - Persistent (handle.Persistent): owned by the foreign side, explicitly
//     initialized and explicitly dropped, valid across regions and calls.
//
// # Thread Safety
//
// Every engine, handle, and class operation must run on the engine thread.
// The task package is the sole concurrency seam: perform callbacks run on a
// background pool with no engine access, and complete callbacks are
// marshaled back onto the engine thread before they run.
package enginebridge
