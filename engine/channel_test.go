package engine

import (
	"context"
	"testing"
	"time"
)

func TestChannel_SendAndProcess(t *testing.T) {
	inst := NewInstance()
	defer inst.Close()

	ran := false
	if err := inst.Channel().Send(func(r *Region) {
		ran = true
		if !r.Open() {
			t.Error("expected a fresh open region")
		}
		if inst.Current() != r {
			t.Error("expected dispatched region to be current")
		}
	}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := inst.ProcessOne(ctx); err != nil {
		t.Fatalf("ProcessOne failed: %v", err)
	}
	if !ran {
		t.Fatal("closure did not run")
	}
	if inst.Current() != nil {
		t.Fatal("expected dispatch region to be closed")
	}
}

func TestChannel_ProcessUntilIdle(t *testing.T) {
	inst := NewInstance()
	defer inst.Close()

	count := 0
	for i := 0; i < 5; i++ {
		if err := inst.Channel().Send(func(*Region) { count++ }); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	if n := inst.ProcessUntilIdle(); n != 5 {
		t.Fatalf("expected 5 dispatched, got %d", n)
	}
	if count != 5 {
		t.Fatalf("expected 5 runs, got %d", count)
	}
	if n := inst.ProcessUntilIdle(); n != 0 {
		t.Fatalf("expected idle queue, got %d", n)
	}
}

func TestChannel_SendFromBackgroundGoroutine(t *testing.T) {
	inst := NewInstance()
	defer inst.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := inst.Channel().Send(func(*Region) {}); err != nil {
			t.Errorf("Send failed: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := inst.ProcessOne(ctx); err != nil {
		t.Fatalf("ProcessOne failed: %v", err)
	}
	<-done
}

func TestChannel_ClosedRejectsSend(t *testing.T) {
	inst := NewInstance()
	if err := inst.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := inst.Channel().Send(func(*Region) {}); err == nil {
		t.Fatal("expected Send on a closed instance to fail")
	}
}

func TestChannel_ProcessOneRespectsContext(t *testing.T) {
	inst := NewInstance()
	defer inst.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := inst.ProcessOne(ctx); err == nil {
		t.Fatal("expected context deadline error on empty queue")
	}
}
