package feb

import (
	"context"
	"testing"
)

// testTask is a minimal Task for exercising PrecondTask/CheckPreconds
// directly, without going through a blocking FEB operation.
type testTask struct {
	resumed chan struct{}
}

func newTestTask() *testTask { return &testTask{resumed: make(chan struct{})} }

func (t *testTask) Resume()                     { close(t.resumed) }
func (t *testTask) TargetWorker() (Worker, bool) { return nil, false }

func TestCheckPrecondsAllSatisfiedIsImmediatelyRunnable(t *testing.T) {
	r := mustRegistry(t)
	ctx := context.Background()
	var a, b Word
	if err := r.WriteF(ctx, &a, &a); err != nil {
		t.Fatalf("WriteF a: %v", err)
	}
	if err := r.WriteF(ctx, &b, &b); err != nil {
		t.Fatalf("WriteF b: %v", err)
	}

	pt := &PrecondTask{Task: newTestTask(), Preconds: []*Word{&a, &b}}
	ready, err := r.CheckPreconds(pt)
	if err != nil {
		t.Fatalf("CheckPreconds: %v", err)
	}
	if ready != 0 {
		t.Fatalf("CheckPreconds = %d, want 0 (runnable)", ready)
	}
	if len(pt.Preconds) != 0 {
		t.Fatalf("Preconds not drained: %v", pt.Preconds)
	}
}

func TestCheckPrecondsAbsentRecordCountsAsSatisfied(t *testing.T) {
	// No status record means "full, no waiters" per the FEB convention,
	// so an absent precondition address is immediately satisfied.
	r := mustRegistry(t)
	var a Word
	pt := &PrecondTask{Task: newTestTask(), Preconds: []*Word{&a}}
	ready, err := r.CheckPreconds(pt)
	if err != nil {
		t.Fatalf("CheckPreconds: %v", err)
	}
	if ready != 0 {
		t.Fatalf("CheckPreconds = %d, want 0 (runnable)", ready)
	}
}

func TestCheckPrecondsParksOnFirstUnmetPrecond(t *testing.T) {
	r := mustRegistry(t)
	ctx := context.Background()
	var a, b Word
	if err := r.Empty(ctx, &a); err != nil {
		t.Fatalf("Empty a: %v", err)
	}
	if err := r.WriteF(ctx, &b, &b); err != nil {
		t.Fatalf("WriteF b: %v", err)
	}

	pt := &PrecondTask{Task: newTestTask(), Preconds: []*Word{&a, &b}}
	ready, err := r.CheckPreconds(pt)
	if err != nil {
		t.Fatalf("CheckPreconds: %v", err)
	}
	if ready != 1 {
		t.Fatalf("CheckPreconds = %d, want 1 (parked)", ready)
	}
	if len(pt.Preconds) != 2 {
		t.Fatalf("Preconds shrunk before its blocking precondition was satisfied: %v", pt.Preconds)
	}

	rec, release, ok := r.lookup(align(&a))
	if !ok {
		t.Fatal("expected a status record for a")
	}
	defer release()
	rec.lock.Lock()
	found := false
	for n := rec.FFQ.head; n != nil; n = n.next {
		if n.nascent && n.task == pt {
			found = true
		}
	}
	rec.lock.Unlock()
	if !found {
		t.Fatal("PrecondTask was not parked on a's FFQ")
	}
}

// TestPrecondTaskLaunchesOnFill exercises spec.md §4.5's batching: a
// PrecondTask parked on a's FFQ is re-checked once a is filled, and — all
// of its other preconditions already being satisfied — becomes runnable
// without the caller ever calling CheckPreconds again itself.
func TestPrecondTaskLaunchesOnFill(t *testing.T) {
	r := mustRegistry(t)
	ctx := context.Background()
	var a, b Word
	if err := r.Empty(ctx, &a); err != nil {
		t.Fatalf("Empty a: %v", err)
	}
	if err := r.WriteF(ctx, &b, &b); err != nil {
		t.Fatalf("WriteF b: %v", err)
	}

	task := newTestTask()
	pt := &PrecondTask{Task: task, Preconds: []*Word{&a, &b}}
	if ready, err := r.CheckPreconds(pt); err != nil || ready != 1 {
		t.Fatalf("CheckPreconds = (%d, %v), want (1, nil)", ready, err)
	}

	select {
	case <-task.resumed:
		t.Fatal("task resumed before its precondition was satisfied")
	default:
	}

	if err := r.Fill(ctx, &a); err != nil {
		t.Fatalf("Fill: %v", err)
	}
	waitFor(t, func() bool {
		select {
		case <-task.resumed:
			return true
		default:
			return false
		}
	})
}
