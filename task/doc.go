// Package task bridges foreign work onto the engine's background task
// queue and marshals results back to the engine thread.
//
// Each Task splits into two phases: perform runs on a pool goroutine with
// no engine access of any kind, and complete runs on the engine thread with
// the perform result, the original payload, and the stored persistent
// completion callback. For a single task, perform happens-before complete;
// across tasks no perform ordering exists, but every complete is serialized
// with all other engine-thread activity by the instance's completion
// channel.
//
//	sched := task.NewScheduler(inst, 4)
//	defer sched.Close()
//
//	cb := handle.New()
//	// ... cb.Init(inst, someFunction) under an open region ...
//
//	sched.Schedule(payload, work, func(r *engine.Region, result, payload any, cb *handle.Persistent) {
//	    fn, _ := cb.Read(r)
//	    engine.Call(r, fn, r.Undefined(), r.Number(result.(float64)))
//	}, cb)
//
// The engine thread drains completions with Instance.ProcessOne or
// Instance.ProcessUntilIdle.
package task
