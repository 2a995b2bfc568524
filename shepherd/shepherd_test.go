package shepherd_test

import (
	"context"
	"testing"
	"time"

	"github.com/vanadium-archive/qfeb/feb"
	"github.com/vanadium-archive/qfeb/shepherd"
)

type recordingTask struct {
	resumed chan int
	worker  int
	pinned  bool
}

func (t *recordingTask) Resume()                     { t.resumed <- t.worker }
func (t *recordingTask) TargetWorker() (feb.Worker, bool) {
	if !t.pinned {
		return nil, false
	}
	return fakeWorker{t.worker}, true
}

type fakeWorker struct{ id int }

func (w fakeWorker) ID() int { return w.id }

func TestPoolRunsEnqueuedTasks(t *testing.T) {
	p := shepherd.New(2)
	defer p.Close()

	task := &recordingTask{resumed: make(chan int, 1)}
	p.EnqueueReady(nil, task)

	select {
	case <-task.resumed:
	case <-time.After(2 * time.Second):
		t.Fatal("task was never resumed")
	}
}

func TestPoolCurrentWorkerReflectsContext(t *testing.T) {
	p := shepherd.New(3)
	defer p.Close()

	if _, ok := p.CurrentWorker(context.Background()); ok {
		t.Fatal("CurrentWorker on an untagged context should report false")
	}
	w, ok := p.CurrentWorker(p.Context(1))
	if !ok {
		t.Fatal("CurrentWorker on a tagged context should report true")
	}
	if w.ID() != 1 {
		t.Fatalf("CurrentWorker().ID() = %d, want 1", w.ID())
	}
}

func TestPoolSpawnRunsFn(t *testing.T) {
	p := shepherd.New(1)
	defer p.Close()

	done := make(chan struct{})
	p.Spawn(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Spawn never ran fn")
	}
}

func TestPoolNumWorkers(t *testing.T) {
	p := shepherd.New(5)
	defer p.Close()
	if n := p.NumWorkers(); n != 5 {
		t.Fatalf("NumWorkers() = %d, want 5", n)
	}
}
