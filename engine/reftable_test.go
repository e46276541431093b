package engine

import (
	"testing"
)

func TestRefTable_Basic(t *testing.T) {
	inst := NewInstance()
	defer inst.Close()

	var r Region
	Enter(&r, inst)
	defer Exit(&r)

	v := r.Number(9)
	h, err := inst.RefCreate(v)
	if err != nil {
		t.Fatalf("RefCreate failed: %v", err)
	}
	if h == 0 {
		t.Fatal("expected non-zero handle")
	}

	got, err := inst.RefRead(&r, h)
	if err != nil {
		t.Fatalf("RefRead failed: %v", err)
	}
	if !SameHandle(got, v) {
		t.Fatal("expected identical value back")
	}

	if inst.RefCount() != 1 {
		t.Fatalf("expected 1 live ref, got %d", inst.RefCount())
	}

	if err := inst.RefDrop(h); err != nil {
		t.Fatalf("RefDrop failed: %v", err)
	}
	if inst.RefCount() != 0 {
		t.Fatalf("expected 0 live refs, got %d", inst.RefCount())
	}
	if _, err := inst.RefRead(&r, h); err == nil {
		t.Fatal("expected read of dropped handle to fail")
	}
}

func TestRefTable_Update(t *testing.T) {
	inst := NewInstance()
	defer inst.Close()

	var r Region
	Enter(&r, inst)
	defer Exit(&r)

	a := r.Number(1)
	b := r.Number(2)

	h, err := inst.RefCreate(a)
	if err != nil {
		t.Fatalf("RefCreate failed: %v", err)
	}
	if err := inst.RefUpdate(h, b); err != nil {
		t.Fatalf("RefUpdate failed: %v", err)
	}

	got, err := inst.RefRead(&r, h)
	if err != nil {
		t.Fatalf("RefRead failed: %v", err)
	}
	if !SameHandle(got, b) {
		t.Fatal("expected updated value")
	}
}

func TestRefTable_FreeListReuse(t *testing.T) {
	inst := NewInstance()
	defer inst.Close()

	var r Region
	Enter(&r, inst)
	defer Exit(&r)

	h1, _ := inst.RefCreate(r.Number(1))
	if err := inst.RefDrop(h1); err != nil {
		t.Fatalf("RefDrop failed: %v", err)
	}

	h2, _ := inst.RefCreate(r.Number(2))
	if h2 != h1 {
		t.Fatalf("expected freed slot %d to be reused, got %d", h1, h2)
	}
}

func TestRefTable_SharedTarget(t *testing.T) {
	inst := NewInstance()
	defer inst.Close()

	var r Region
	Enter(&r, inst)
	defer Exit(&r)

	v := r.Object()
	h1, _ := inst.RefCreate(v)
	h2, _ := inst.RefCreate(v)
	if h1 == h2 {
		t.Fatal("expected distinct handles")
	}

	a, _ := inst.RefRead(&r, h1)
	b, _ := inst.RefRead(&r, h2)
	if !SameHandle(a, b) {
		t.Fatal("expected both refs to reach the same value")
	}

	// Dropping one ref must not invalidate the other.
	if err := inst.RefDrop(h1); err != nil {
		t.Fatalf("RefDrop failed: %v", err)
	}
	if _, err := inst.RefRead(&r, h2); err != nil {
		t.Fatalf("second ref became invalid: %v", err)
	}
}

func TestRefTable_ClosedInstance(t *testing.T) {
	inst := NewInstance()

	var r Region
	Enter(&r, inst)
	v := r.Number(1)
	Exit(&r)

	if err := inst.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := inst.RefCreate(v); err == nil {
		t.Fatal("expected RefCreate on a closed instance to fail")
	}
}
