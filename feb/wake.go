package feb

import (
	"context"
	"sync"

	"github.com/vanadium-archive/qfeb/vlog"
)

// callerTask is the Task handle a blocking FEB operation registers for
// itself: Resume makes the blocked call return by closing done, exactly
// once. It never needs TargetWorker affinity of its own, since it was
// never placed on an external ready-queue by anyone but this package.
type callerTask struct {
	done chan struct{}
	once sync.Once
}

func newCallerTask() *callerTask { return &callerTask{done: make(chan struct{})} }

func (t *callerTask) Resume()                     { t.once.Do(func() { close(t.done) }) }
func (t *callerTask) TargetWorker() (Worker, bool) { return nil, false }
func (t *callerTask) wait()                       { <-t.done }

// suspendSelf parks the calling goroutine, having already linked its
// waiter node into the record's queue and released the record lock.
// When the caller is running on a tracked scheduler worker, the
// scheduler is told so via SuspendCurrent (bookkeeping only — nothing
// here depends on the scheduler doing anything further). Otherwise this
// takes the out-of-scheduler-context fallback (spec.md §4.4, §9): if the
// Scheduler also implements Spawner, a helper is handed the bookkeeping
// call so the scheduler's internal state stays consistent, but the
// actual suspension is always just this goroutine blocking on its own
// completion latch — schedule() (below) closes it once the wake engine
// or a maintenance sweep resumes the task.
func (r *Registry) suspendSelf(ctx context.Context, task *callerTask, rec *AddrStat) {
	if _, onWorker := r.cfg.scheduler.CurrentWorker(ctx); onWorker {
		r.cfg.scheduler.SuspendCurrent(ctx, task, rec)
		task.wait()
		return
	}
	if spawner, ok := r.cfg.scheduler.(Spawner); ok {
		spawner.Spawn(func() { r.cfg.scheduler.SuspendCurrent(ctx, task, rec) })
	}
	task.wait()
}

// precondBatch accumulates nascent FFQ waiters encountered while draining
// during a single top-level wake-engine invocation (spec.md §4.5). The
// source's self-pointing-tail sentinel is an implementation detail (§9);
// a plain slice serves the same purpose.
type precondBatch struct {
	waiters []*AddrRes
}

func (b *precondBatch) add(n *AddrRes) { b.waiters = append(b.waiters, n) }

// scheduleWaiter places w's task on its target worker's ready queue, or
// the current worker's if it has no affinity (spec.md §4.6).
func (r *Registry) scheduleWaiter(n *AddrRes) {
	target, _ := n.task.TargetWorker()
	r.cfg.scheduler.EnqueueReady(target, n.task)
}

// gotlockFill is the fill half of the wake engine (spec.md §4.3). It is
// entered holding rec.lock, and — unless recursive — releases it before
// returning. p is the address of the synchronization word this
// operation concerns; slot copies read its current value.
func (r *Registry) gotlockFill(rec *AddrStat, key AlignedAddr, p *Word, recursive bool, batch *precondBatch) {
	rec.full = true
	if batch == nil {
		batch = &precondBatch{}
	}

	for {
		n := rec.FFQ.popFront()
		if n == nil {
			break
		}
		if n.addr != nil && n.addr != p {
			*n.addr = *p
		}
		if n.nascent {
			batch.add(n)
			continue
		}
		vlog.Log.VI(2).Infof("feb: waking FFQ reader for %#x", uintptr(key))
		r.scheduleWaiter(n)
		r.cfg.allocator.FreeWaiter(n)
	}

	if n := rec.FEQ.popFront(); n != nil {
		if n.addr != nil && n.addr != p {
			*n.addr = *p
		}
		vlog.Log.VI(2).Infof("feb: waking FEQ reader for %#x", uintptr(key))
		r.scheduleWaiter(n)
		r.cfg.allocator.FreeWaiter(n)
		r.gotlockEmpty(rec, key, p, true, batch)
	}

	if !recursive {
		removeable := rec.EFQ.empty() && rec.FEQ.empty() && rec.full
		rec.lock.Unlock()
		r.launchBatch(batch)
		if removeable {
			r.removeIfIdle(context.Background(), key, rec)
		}
	}
}

// gotlockEmpty is the empty half of the wake engine (spec.md §4.3).
func (r *Registry) gotlockEmpty(rec *AddrStat, key AlignedAddr, p *Word, recursive bool, batch *precondBatch) {
	rec.full = false
	if batch == nil {
		batch = &precondBatch{}
	}

	if n := rec.EFQ.popFront(); n != nil {
		if n.addr != nil && n.addr != p {
			*p = *n.addr
		}
		vlog.Log.VI(2).Infof("feb: waking EFQ writer for %#x", uintptr(key))
		r.scheduleWaiter(n)
		r.cfg.allocator.FreeWaiter(n)
		r.gotlockFill(rec, key, p, true, batch)
	}

	if !recursive {
		removeable := rec.full && rec.EFQ.empty() && rec.FEQ.empty() && rec.FFQ.empty()
		rec.lock.Unlock()
		r.launchBatch(batch)
		if removeable {
			r.removeIfIdle(context.Background(), key, rec)
		}
	}
}

// launchBatch re-checks every nascent waiter's remaining preconditions
// after the record lock that produced them has already been released
// (spec.md §4.5), placing any task whose preconditions are now all
// satisfied onto its ready-queue.
func (r *Registry) launchBatch(batch *precondBatch) {
	if batch == nil {
		return
	}
	for _, n := range batch.waiters {
		pt, _ := n.task.(*PrecondTask)
		r.cfg.allocator.FreeWaiter(n)
		if pt == nil {
			continue
		}
		ready, err := r.CheckPreconds(pt)
		if err != nil {
			vlog.Log.VI(2).Infof("feb: allocation failure re-checking preconditions: %v", err)
			continue
		}
		if ready == 0 {
			r.cfg.scheduler.EnqueueReady(nil, pt)
		}
	}
}
