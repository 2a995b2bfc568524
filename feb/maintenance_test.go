package feb

import (
	"context"
	"testing"
)

func TestFEBCallbackVisitsEveryWaiter(t *testing.T) {
	r := mustRegistry(t)
	ctx := context.Background()
	var a, b Word
	if err := r.Empty(ctx, &a); err != nil {
		t.Fatalf("Empty a: %v", err)
	}
	if err := r.Empty(ctx, &b); err != nil {
		t.Fatalf("Empty b: %v", err)
	}

	done := make(chan struct{})
	go func() {
		var dest Word
		r.ReadFF(ctx, &dest, &a)
		close(done)
	}()
	waitFor(t, func() bool {
		rec, release, ok := r.lookup(align(&a))
		if !ok {
			return false
		}
		defer release()
		rec.lock.Lock()
		defer rec.lock.Unlock()
		return !rec.FFQ.empty()
	})

	var visited int
	r.FEBCallback(func(addr *Word, waiter Task, arg interface{}) {
		visited++
	}, nil)
	if visited != 1 {
		t.Fatalf("FEBCallback visited %d waiters, want 1", visited)
	}

	if err := r.Fill(ctx, &a); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	<-done
}

func TestTaskFilterAssassinatesAndUnlinks(t *testing.T) {
	r := mustRegistry(t)
	ctx := context.Background()
	var a Word
	if err := r.Empty(ctx, &a); err != nil {
		t.Fatalf("Empty a: %v", err)
	}

	readerDone := make(chan error, 1)
	go func() {
		var dest Word
		readerDone <- r.ReadFF(ctx, &dest, &a)
	}()
	waitFor(t, func() bool {
		rec, release, ok := r.lookup(align(&a))
		if !ok {
			return false
		}
		defer release()
		rec.lock.Lock()
		defer rec.lock.Unlock()
		return !rec.FFQ.empty()
	})

	var assassinated int
	r.TaskFilter(func(addr *Word, waiter Task, arg interface{}) int {
		assassinated++
		return 2
	}, nil)
	if assassinated != 1 {
		t.Fatalf("TaskFilter invoked its callback %d times, want 1", assassinated)
	}

	rec, release, ok := r.lookup(align(&a))
	if !ok {
		t.Fatal("expected a's status record to still exist (it is not idle-and-full)")
	}
	rec.lock.Lock()
	empty := rec.FFQ.empty()
	rec.lock.Unlock()
	release()
	if !empty {
		t.Fatal("TaskFilter should have unlinked the assassinated waiter from FFQ")
	}

	// The assassinated reader's goroutine is still parked: its callerTask
	// was never Resumed (Assassinate on the default inline scheduler is a
	// no-op), matching the documented "no further action is taken on the
	// caller's behalf" contract for assassination.
	select {
	case <-readerDone:
		t.Fatal("assassinated reader's ReadFF returned, but nothing woke it")
	default:
	}
}

func TestTaskFilterPanicsOnUnrecognizedCode(t *testing.T) {
	r := mustRegistry(t)
	ctx := context.Background()
	var a Word
	if err := r.Empty(ctx, &a); err != nil {
		t.Fatalf("Empty a: %v", err)
	}
	go func() {
		var dest Word
		r.ReadFF(ctx, &dest, &a)
	}()
	waitFor(t, func() bool {
		rec, release, ok := r.lookup(align(&a))
		if !ok {
			return false
		}
		defer release()
		rec.lock.Lock()
		defer rec.lock.Unlock()
		return !rec.FFQ.empty()
	})

	defer func() {
		if recover() == nil {
			t.Fatal("expected TaskFilter to panic on an unrecognized callback return code")
		}
	}()
	r.TaskFilter(func(addr *Word, waiter Task, arg interface{}) int {
		return 7
	}, nil)
}
