package exception

import (
	"testing"

	"github.com/wippyai/engine-bridge/engine"
)

func TestThrow(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	var r engine.Region
	engine.Enter(&r, inst)
	defer engine.Exit(&r)

	v := NewError(&r, "boom")
	Throw(&r, v)

	if !inst.HasPending() {
		t.Fatal("expected a pending exception")
	}
	thrown, _ := inst.TakePending(&r)
	if !engine.SameHandle(thrown, v) {
		t.Fatal("expected the thrown value back")
	}
}

func TestErrorConstructors(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	var r engine.Region
	engine.Enter(&r, inst)
	defer engine.Exit(&r)

	tests := []struct {
		name string
		v    engine.Value
		sub  engine.ErrorKind
	}{
		{"plain", NewError(&r, "a"), engine.ErrPlain},
		{"type", NewTypeError(&r, "b"), engine.ErrType},
		{"range", NewRangeError(&r, "c"), engine.ErrRange},
	}
	for _, tt := range tests {
		if !IsError(tt.v) {
			t.Fatalf("%s: expected error tag", tt.name)
		}
		if tt.v.ErrorSubtype() != tt.sub {
			t.Fatalf("%s: wrong subtype", tt.name)
		}
		// Constructing must not throw.
		if inst.HasPending() {
			t.Fatalf("%s: constructor left an exception pending", tt.name)
		}
	}
}

func TestThrowFromUtf8(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	var r engine.Region
	engine.Enter(&r, inst)
	defer engine.Exit(&r)

	ThrowFromUtf8(&r, []byte("decoded fine"))
	thrown, ok := inst.TakePending(&r)
	if !ok {
		t.Fatal("expected a pending exception")
	}
	if thrown.ErrorMessage() != "decoded fine" {
		t.Fatalf("unexpected message %q", thrown.ErrorMessage())
	}
}

func TestThrowFromUtf8_Invalid(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	var r engine.Region
	engine.Enter(&r, inst)
	defer engine.Exit(&r)

	ThrowFromUtf8(&r, []byte{0xff, 0xfe, 0xfd})
	thrown, ok := inst.TakePending(&r)
	if !ok {
		t.Fatal("bad bytes must still leave an exception pending")
	}
	if thrown.ErrorMessage() != fallbackMessage {
		t.Fatalf("expected fallback message, got %q", thrown.ErrorMessage())
	}
}

func TestIsError(t *testing.T) {
	inst := engine.NewInstance()
	defer inst.Close()

	var r engine.Region
	engine.Enter(&r, inst)
	defer engine.Exit(&r)

	if IsError(r.Object()) {
		t.Fatal("plain object is not an error")
	}
	if !IsError(NewError(&r, "x")) {
		t.Fatal("expected error tag")
	}
}
