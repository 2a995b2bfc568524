package feb

// PrecondTask is a not-yet-started task registered via CheckPreconds
// (spec.md §4.5): it wraps the real scheduler Task together with the
// ordered list of addresses that must all be observed full before the
// wrapped task may run. The list shrinks in place as preconditions are
// satisfied, so a PrecondTask can be re-checked repeatedly without
// losing progress.
type PrecondTask struct {
	Task     Task
	Preconds []*Word
}

// Resume and TargetWorker let a *PrecondTask itself serve as the Task
// stored in a nascent AddrRes node: the wake engine only ever resumes or
// queries affinity for it once CheckPreconds has confirmed it runnable,
// at which point both simply delegate to the real task.
func (p *PrecondTask) Resume()                     { p.Task.Resume() }
func (p *PrecondTask) TargetWorker() (Worker, bool) { return p.Task.TargetWorker() }

// CheckPreconds walks pt's remaining precondition addresses in order.
// For each: if no status record exists, or one exists and is full, the
// address is satisfied and dropped from the list. The first unmet
// precondition parks pt on that address's FFQ (as a nascent waiter) and
// returns 1 — the task is not yet runnable. If every precondition is
// satisfied, pt is left runnable and CheckPreconds returns 0.
func (r *Registry) CheckPreconds(pt *PrecondTask) (int, error) {
	for len(pt.Preconds) > 0 {
		p := pt.Preconds[0]
		key := align(p)
		rec, release, ok := r.lookup(key)
		if !ok {
			pt.Preconds = pt.Preconds[1:]
			continue
		}

		rec.lock.Lock()
		if rec.full {
			rec.lock.Unlock()
			release()
			pt.Preconds = pt.Preconds[1:]
			continue
		}

		n, err := r.cfg.allocator.AllocWaiter()
		if err != nil {
			rec.lock.Unlock()
			release()
			return 0, ErrAllocationFailure
		}
		n.addr = nil
		n.task = pt
		n.nascent = true
		rec.FFQ.pushBack(n)
		rec.lock.Unlock()
		release()
		return 1, nil
	}
	return 0, nil
}
