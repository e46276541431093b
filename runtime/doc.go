// Package runtime provides the high-level API for driving the engine
// bridge: one engine instance, a task scheduler, scope helpers, and class
// registration in a single handle.
//
//	rt, err := runtime.New(runtime.WithWorkers(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(context.Background())
//
//	md, err := rt.DefineClass(reflect.TypeOf(Point{}), "Point",
//	    allocateKernel, constructKernel, engine.Kernel{}, nil)
//
//	err = rt.WithScope(func(r *engine.Region) error {
//	    ctor, err := md.Constructor(r)
//	    if err != nil {
//	        return err
//	    }
//	    _, err = engine.Construct(r, ctor, r.Number(1), r.Number(2))
//	    return err
//	})
package runtime
