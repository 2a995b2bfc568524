package feb

import "github.com/vanadium-archive/qfeb/vlog"

// TaskFilterFunc inspects one queued waiter during a maintenance sweep
// (spec.md §4.7). Returning 0 keeps the waiter untouched; returning 2
// unlinks it, assassinates its task via the configured Scheduler, and
// frees its waiter node. Any other return value is a logic-invariant
// violation and is fatal.
type TaskFilterFunc func(addr *Word, waiter Task, arg interface{}) int

// TaskFilter walks every stripe, every status record, and within each
// record its EFQ, FEQ, and FFQ in that order, invoking fn on every
// waiter found. Each record's lock is held only long enough to walk and
// possibly prune its own three queues.
func (r *Registry) TaskFilter(fn TaskFilterFunc, arg interface{}) {
	for _, m := range r.stripe {
		m.forEach(func(_ AlignedAddr, rec *AddrStat) {
			rec.lock.Lock()
			r.filterQueue(&rec.EFQ, fn, arg)
			r.filterQueue(&rec.FEQ, fn, arg)
			r.filterQueue(&rec.FFQ, fn, arg)
			rec.lock.Unlock()
		})
	}
}

func (r *Registry) filterQueue(q *waiterQueue, fn TaskFilterFunc, arg interface{}) {
	var dead []*AddrRes
	for n := q.head; n != nil; {
		next := n.next
		switch fn(n.addr, n.task, arg) {
		case 0:
			// keep
		case 2:
			q.remove(n)
			dead = append(dead, n)
		default:
			panic("feb: taskfilter callback returned an unrecognized code")
		}
		n = next
	}
	for _, n := range dead {
		vlog.Log.VI(2).Infof("feb: taskfilter assassinating waiter for %#x", addrOf(n.addr))
		r.cfg.scheduler.Assassinate(n.task)
		r.cfg.allocator.FreeWaiter(n)
	}
}

func addrOf(p *Word) uintptr {
	return uintptr(align(p))
}

// FEBCallback is a convenience sweep built on TaskFilter that simply
// invokes cb on every waiter and never assassinates (spec.md §4.7's
// feb_callback).
func (r *Registry) FEBCallback(cb func(addr *Word, waiter Task, arg interface{}), arg interface{}) {
	r.TaskFilter(func(addr *Word, waiter Task, arg interface{}) int {
		cb(addr, waiter, arg)
		return 0
	}, arg)
}
