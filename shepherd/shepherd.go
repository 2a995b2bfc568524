// Package shepherd is a minimal reference feb.Scheduler: a fixed pool of
// worker goroutines, each draining its own ready-queue channel. It exists
// so the feb package can be exercised end-to-end, and so programs like
// cmd/qfebdemo have a Scheduler to plug in, without every caller having
// to write one from scratch.
package shepherd

import (
	"context"
	"sync/atomic"

	"github.com/vanadium-archive/qfeb/feb"
	"github.com/vanadium-archive/qfeb/vlog"
)

// worker is a shepherd's feb.Worker handle: a small dense id plus the
// channel its ready-queue drains from.
type worker struct {
	id    int
	ready chan feb.Task
}

func (w *worker) ID() int { return w.id }

type workerCtxKey struct{}

// Pool implements feb.Scheduler and feb.Spawner.
type Pool struct {
	workers []*worker
	next    uint64
	done    chan struct{}
}

// New starts a Pool of n worker goroutines.
func New(n int) *Pool {
	p := &Pool{done: make(chan struct{})}
	p.workers = make([]*worker, n)
	for i := range p.workers {
		p.workers[i] = &worker{id: i, ready: make(chan feb.Task, 64)}
	}
	for _, w := range p.workers {
		go p.run(w)
	}
	vlog.Log.VI(2).Infof("shepherd: started pool with %d workers", n)
	return p
}

func (p *Pool) run(w *worker) {
	for {
		select {
		case t, ok := <-w.ready:
			if !ok {
				return
			}
			t.Resume()
		case <-p.done:
			return
		}
	}
}

// Context returns a context tagged as running on worker i, so that feb
// operations invoked with it are recognized by CurrentWorker as running
// on a tracked shepherd worker rather than taking the
// out-of-scheduler-context fallback.
func (p *Pool) Context(i int) context.Context {
	return context.WithValue(context.Background(), workerCtxKey{}, p.workers[i])
}

// NumWorkers reports how many workers the pool was started with.
func (p *Pool) NumWorkers() int { return len(p.workers) }

func (p *Pool) CurrentWorker(ctx context.Context) (feb.Worker, bool) {
	w, ok := ctx.Value(workerCtxKey{}).(*worker)
	if !ok {
		return nil, false
	}
	return w, true
}

// SuspendCurrent has nothing to record: a Pool's workers have no
// run-state beyond their ready channel, so there is no accounting to
// update when a task suspends.
func (p *Pool) SuspendCurrent(ctx context.Context, self feb.Task, blockedOn *feb.AddrStat) {}

// EnqueueReady queues t on w when w is one of this pool's workers.
// Otherwise it picks a worker round-robin: a Pool does not know which
// worker the caller is running on, so it does not use the current
// worker's queue.
func (p *Pool) EnqueueReady(w feb.Worker, t feb.Task) {
	if ww, ok := w.(*worker); ok && ww != nil {
		ww.ready <- t
		return
	}
	idx := atomic.AddUint64(&p.next, 1) % uint64(len(p.workers))
	p.workers[idx].ready <- t
}

// Assassinate is a no-op: the caller (TaskFilter) has already unlinked
// the waiter node before calling this; there is no further pool-side
// state referencing the task to clean up.
func (p *Pool) Assassinate(t feb.Task) {}

// Spawn runs fn on a fresh goroutine, for feb's out-of-scheduler-context
// fallback.
func (p *Pool) Spawn(fn func()) { go fn() }

// Close stops every worker goroutine. Callers must ensure no FEB
// operation is still blocked on this pool before calling Close.
func (p *Pool) Close() { close(p.done) }
