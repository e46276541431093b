package runtime

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/wippyai/engine-bridge/class"
	"github.com/wippyai/engine-bridge/engine"
	"github.com/wippyai/engine-bridge/handle"
)

type counter struct {
	n int
}

func TestRuntime_Scopes(t *testing.T) {
	rt, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer rt.Close(context.Background())

	err = rt.WithScope(func(reg *engine.Region) error {
		if !reg.Open() {
			t.Error("expected an open region")
		}
		if rt.Instance().Current() != reg {
			t.Error("expected the scope region to be current")
		}

		// Promote a value out of an inner escapable scope.
		v, err := rt.WithEscapableScope(func(inner *engine.Region) (engine.Value, error) {
			return inner.Number(11), nil
		})
		if err != nil {
			return err
		}
		if v.Region() != reg {
			t.Error("expected the escaped value homed in the outer region")
		}
		if v.Number() != 11 {
			t.Errorf("expected 11, got %v", v.Number())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithScope failed: %v", err)
	}
	if rt.Instance().Current() != nil {
		t.Fatal("expected no region after WithScope returned")
	}
}

func TestRuntime_DefineClass(t *testing.T) {
	rt, err := New()
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer rt.Close(context.Background())

	key := reflect.TypeOf(&counter{})
	md, err := rt.DefineClass(key, "Counter",
		class.AllocateKernel{Static: func(cc *engine.CallContext) (any, error) {
			return &counter{n: int(cc.Get(0).Number())}, nil
		}},
		engine.Kernel{}, engine.Kernel{}, nil)
	if err != nil {
		t.Fatalf("DefineClass failed: %v", err)
	}
	if md.GetName() != "Counter" {
		t.Fatalf("unexpected class name %q", md.GetName())
	}

	got, ok := rt.LookupClass(key)
	if !ok || got != md {
		t.Fatal("expected the registered class back")
	}
	if _, ok := rt.LookupClass(reflect.TypeOf(0)); ok {
		t.Fatal("expected miss for an unregistered type")
	}

	// Duplicate keys are rejected.
	if _, err := rt.DefineClass(key, "Counter",
		class.AllocateKernel{Static: func(*engine.CallContext) (any, error) { return nil, nil }},
		engine.Kernel{}, engine.Kernel{}, nil); err == nil {
		t.Fatal("expected duplicate class key to fail")
	}

	err = rt.WithScope(func(reg *engine.Region) error {
		ctor, err := md.Constructor(reg)
		if err != nil {
			return err
		}
		obj, err := engine.Construct(reg, ctor, reg.Number(3))
		if err != nil {
			return err
		}
		internals, ok := class.Internals(obj)
		if !ok {
			t.Fatal("expected bound internals")
		}
		if internals.(*counter).n != 3 {
			t.Fatalf("expected 3, got %d", internals.(*counter).n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithScope failed: %v", err)
	}
}

func TestRuntime_ScheduleAndClose(t *testing.T) {
	rt, err := New(WithWorkers(2))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var cb *handle.Persistent
	err = rt.WithScope(func(reg *engine.Region) error {
		cb = handle.New()
		return cb.Init(rt.Instance(), reg.Number(0))
	})
	if err != nil {
		t.Fatalf("callback setup failed: %v", err)
	}

	completed := 0
	for i := 0; i < 10; i++ {
		callback := cb
		if i > 0 {
			callback = nil
		}
		err := rt.Schedule(i,
			func(payload any) any { return payload.(int) * 2 },
			func(_ *engine.Region, result, payload any, _ *handle.Persistent) {
				if result.(int) != payload.(int)*2 {
					t.Errorf("task %v completed with %v", payload, result)
				}
				completed++
			},
			callback)
		if err != nil {
			t.Fatalf("Schedule %d failed: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rt.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if completed != 10 {
		t.Fatalf("expected 10 completions before close finished, got %d", completed)
	}
	if err := rt.Schedule(0,
		func(any) any { return nil },
		func(*engine.Region, any, any, *handle.Persistent) {},
		nil); err == nil {
		t.Fatal("expected Schedule after Close to fail")
	}
}
