package class

import (
	"reflect"
	"testing"

	"github.com/wippyai/engine-bridge/engine"
)

type widget struct {
	size int
}

func widgetAllocate(cc *engine.CallContext) (any, error) {
	w := &widget{}
	if cc.Length() > 0 {
		w.size = int(cc.Get(0).Number())
	}
	return w, nil
}

func newWidgetClass(t *testing.T, inst *engine.Instance) *BaseClassMetadata {
	t.Helper()
	md, err := CreateBase(inst,
		AllocateKernel{Static: widgetAllocate},
		engine.Kernel{}, engine.Kernel{}, nil)
	if err != nil {
		t.Fatalf("CreateBase failed: %v", err)
	}
	return md
}

func TestCreateBase_RequiresAllocate(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	if _, err := CreateBase(inst, AllocateKernel{}, engine.Kernel{}, engine.Kernel{}, nil); err == nil {
		t.Fatal("expected missing allocate kernel to fail")
	}
}

func TestConstruct_BindsInternals(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	var r engine.Region
	engine.Enter(&r, inst)
	defer engine.Exit(&r)

	md := newWidgetClass(t, inst)
	ctor, err := md.Constructor(&r)
	if err != nil {
		t.Fatalf("Constructor failed: %v", err)
	}

	obj, err := engine.Construct(&r, ctor, r.Number(7))
	if err != nil {
		t.Fatalf("Construct failed: %v", err)
	}

	internals, ok := Internals(obj)
	if !ok {
		t.Fatal("expected bound internals")
	}
	w, ok := internals.(*widget)
	if !ok || w.size != 7 {
		t.Fatalf("expected *widget{size: 7}, got %#v", internals)
	}
	if !md.HasInstance(obj) {
		t.Fatal("expected constructed object to pass the class check")
	}
}

func TestConstruct_RunsConstructKernel(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	var r engine.Region
	engine.Enter(&r, inst)
	defer engine.Exit(&r)

	ran := false
	md, err := CreateBase(inst,
		AllocateKernel{Static: widgetAllocate},
		engine.Kernel{Static: func(cc *engine.CallContext) {
			ran = true
			// Internals must already be bound when construct runs.
			if _, ok := Internals(cc.This()); !ok {
				t.Error("expected internals bound before construct kernel")
			}
		}},
		engine.Kernel{}, nil)
	if err != nil {
		t.Fatalf("CreateBase failed: %v", err)
	}

	ctor, _ := md.Constructor(&r)
	if _, err := engine.Construct(&r, ctor); err != nil {
		t.Fatalf("Construct failed: %v", err)
	}
	if !ran {
		t.Fatal("construct kernel did not run")
	}
}

func TestCall_WithoutNewThrows(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	var r engine.Region
	engine.Enter(&r, inst)
	defer engine.Exit(&r)

	md := newWidgetClass(t, inst)
	ctor, _ := md.Constructor(&r)

	if _, err := engine.Call(&r, ctor, r.Undefined()); err == nil {
		t.Fatal("expected plain call without a call kernel to throw")
	}
	thrown, ok := inst.TakePending(&r)
	if !ok {
		t.Fatal("expected a pending exception")
	}
	if thrown.ErrorSubtype() != engine.ErrType {
		t.Fatal("expected a TypeError")
	}
	if thrown.ErrorMessage() != defaultCallError {
		t.Fatalf("unexpected message %q", thrown.ErrorMessage())
	}
}

func TestCall_RoutesToCallKernel(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	var r engine.Region
	engine.Enter(&r, inst)
	defer engine.Exit(&r)

	md, err := CreateBase(inst,
		AllocateKernel{Static: widgetAllocate},
		engine.Kernel{},
		engine.Kernel{Static: func(cc *engine.CallContext) {
			cc.SetReturn(cc.Region().Number(1))
		}}, nil)
	if err != nil {
		t.Fatalf("CreateBase failed: %v", err)
	}

	ctor, _ := md.Constructor(&r)
	out, err := engine.Call(&r, ctor, r.Undefined())
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if out.Number() != 1 {
		t.Fatalf("expected 1, got %v", out.Number())
	}
}

func TestSetName_RefreshesErrorTexts(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	var r engine.Region
	engine.Enter(&r, inst)
	defer engine.Exit(&r)

	md := newWidgetClass(t, inst)
	if err := md.SetName([]byte("Widget")); err != nil {
		t.Fatalf("SetName failed: %v", err)
	}
	if md.GetName() != "Widget" {
		t.Fatalf("unexpected name %q", md.GetName())
	}

	md.ThrowCallError(&r)
	thrown, _ := inst.TakePending(&r)
	if thrown.ErrorMessage() != "Widget "+defaultCallError {
		t.Fatalf("unexpected call error %q", thrown.ErrorMessage())
	}

	md.ThrowThisError(&r)
	thrown, _ = inst.TakePending(&r)
	if thrown.ErrorMessage() != "Widget: "+defaultThisError {
		t.Fatalf("unexpected this error %q", thrown.ErrorMessage())
	}

	if err := md.SetName([]byte{0xff, 0xfe}); err == nil {
		t.Fatal("expected invalid UTF-8 name to fail")
	}
}

func TestAddMethod(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	var r engine.Region
	engine.Enter(&r, inst)
	defer engine.Exit(&r)

	md := newWidgetClass(t, inst)

	method, err := engine.NewFunctionTemplate(inst, engine.Kernel{
		Static: func(cc *engine.CallContext) {
			w, ok := Internals(cc.This())
			if !ok {
				md.ThrowThisError(cc.Region())
				return
			}
			cc.SetReturn(cc.Region().Number(float64(w.(*widget).size)))
		},
	})
	if err != nil {
		t.Fatalf("NewFunctionTemplate failed: %v", err)
	}
	if err := md.AddMethod([]byte("size"), method); err != nil {
		t.Fatalf("AddMethod failed: %v", err)
	}
	if err := md.AddMethod([]byte{0xff}, method); err == nil {
		t.Fatal("expected invalid UTF-8 method name to fail")
	}

	ctor, _ := md.Constructor(&r)
	obj, err := engine.Construct(&r, ctor, r.Number(5))
	if err != nil {
		t.Fatalf("Construct failed: %v", err)
	}

	fn, err := engine.GetString(&r, obj, []byte("size"))
	if err != nil {
		t.Fatalf("GetString failed: %v", err)
	}
	out, err := engine.Call(&r, fn, obj)
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if out.Number() != 5 {
		t.Fatalf("expected 5, got %v", out.Number())
	}

	// Wrong receiver trips the cached this-error.
	if _, err := engine.Call(&r, fn, r.Object()); err == nil {
		t.Fatal("expected wrong receiver to throw")
	}
	thrown, _ := inst.TakePending(&r)
	if thrown.ErrorSubtype() != engine.ErrType {
		t.Fatal("expected a TypeError")
	}
}

func TestDerive(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	var r engine.Region
	engine.Enter(&r, inst)
	defer engine.Exit(&r)

	base := newWidgetClass(t, inst)

	constructRan := false
	derived, err := base.Derive(inst,
		engine.Kernel{Static: func(cc *engine.CallContext) { constructRan = true }},
		engine.Kernel{})
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}

	ctor, _ := derived.Constructor(&r)
	obj, err := engine.Construct(&r, ctor, r.Number(3))
	if err != nil {
		t.Fatalf("Construct failed: %v", err)
	}
	if !constructRan {
		t.Fatal("derived construct kernel did not run")
	}

	// The base allocate kernel produced the internals.
	internals, ok := Internals(obj)
	if !ok {
		t.Fatal("expected bound internals")
	}
	if internals.(*widget).size != 3 {
		t.Fatal("expected base allocate to see the arguments")
	}

	// Derived instances carry the derived prototype, not the base one.
	if base.HasInstance(obj) {
		t.Fatal("derived instance must not match the base class")
	}
	if !derived.HasInstance(obj) {
		t.Fatal("derived instance must match the derived class")
	}
}

func TestDropInstance(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	dropped := 0
	md, err := CreateBase(inst,
		AllocateKernel{Static: widgetAllocate},
		engine.Kernel{}, engine.Kernel{},
		func(internals any) { dropped++ })
	if err != nil {
		t.Fatalf("CreateBase failed: %v", err)
	}

	md.DropInstance(&widget{})
	if dropped != 1 {
		t.Fatalf("expected one drop, got %d", dropped)
	}
}

func TestClassMap_RegisterAndLookup(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	m := NewMap()
	md := newWidgetClass(t, inst)
	key := reflect.TypeOf(&widget{})

	if err := m.Register(key, md); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := m.Register(key, md); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}

	got, ok := m.Lookup(key)
	if !ok || got != md {
		t.Fatal("expected the registered metadata back")
	}
	if _, ok := m.Lookup(reflect.TypeOf(0)); ok {
		t.Fatal("expected miss for an unregistered type")
	}
	if m.Len() != 1 {
		t.Fatalf("expected one class, got %d", m.Len())
	}
}

func TestClassMap_InstanceLifetime(t *testing.T) {
	inst := engine.NewInstance()

	m := NewMap()
	drops := 0
	if err := SetClassMap(inst, m, func(got *Map) {
		drops++
		if got != m {
			t.Error("teardown received the wrong map")
		}
	}); err != nil {
		t.Fatalf("SetClassMap failed: %v", err)
	}

	if GetClassMap(inst) != m {
		t.Fatal("expected the installed map back")
	}
	if err := SetClassMap(inst, NewMap(), nil); err == nil {
		t.Fatal("expected second install to fail")
	}

	// Regions opening and closing must not trigger teardown.
	var r engine.Region
	engine.Enter(&r, inst)
	engine.Exit(&r)
	if drops != 0 {
		t.Fatal("teardown ran before the instance closed")
	}

	if err := inst.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if drops != 1 {
		t.Fatalf("expected exactly one teardown, got %d", drops)
	}

	// Idempotent Close must not re-run teardown.
	inst.Close()
	if drops != 1 {
		t.Fatalf("teardown ran again on repeated close: %d", drops)
	}
}

func TestClassMap_EmptyTeardown(t *testing.T) {
	inst := engine.NewInstance()

	drops := 0
	if err := SetClassMap(inst, NewMap(), func(*Map) { drops++ }); err != nil {
		t.Fatalf("SetClassMap failed: %v", err)
	}
	inst.Close()
	if drops != 1 {
		t.Fatalf("expected teardown even with zero classes, got %d", drops)
	}
}
