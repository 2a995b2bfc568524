package feb

import "context"

// copyWord implements spec.md §4.4's copy semantics: skipped when dest
// is nil or identical to src. The record lock's Unlock, which every
// caller performs before returning, supplies the release fence.
func copyWord(dest, src *Word) {
	if dest == nil || dest == src {
		return
	}
	*dest = *src
}

// Empty marks the slot at p empty, creating its status record if
// absent (spec.md §4.4's empty). Never blocks.
func (r *Registry) Empty(ctx context.Context, p *Word) error {
	key := align(p)
	rec, err := r.lookupOrCreate(key, false)
	if err != nil {
		return err
	}
	r.gotlockEmpty(rec, key, p, false, nil)
	return nil
}

// Fill marks the slot at p full, draining any waiters. A record that
// does not yet exist already models "full, no waiters", so Fill does
// nothing in that case (spec.md §4.4's fill).
func (r *Registry) Fill(ctx context.Context, p *Word) error {
	key := align(p)
	rec, ok := r.lockRecord(key)
	if !ok {
		return nil
	}
	r.gotlockFill(rec, key, p, false, nil)
	return nil
}

// WriteF copies src into dest regardless of the slot's current state,
// then fills it, draining any waiters. Never blocks (spec.md §4.4's
// writeF — the "write-regardless" primitive).
func (r *Registry) WriteF(ctx context.Context, dest, src *Word) error {
	key := align(dest)
	rec, ok := r.lockRecord(key)
	if !ok {
		copyWord(dest, src)
		return nil
	}
	copyWord(dest, src)
	r.gotlockFill(rec, key, dest, false, nil)
	return nil
}

// WriteEF copies src into dest and fills the slot if it is currently
// empty; otherwise it blocks until some reader empties the slot, at
// which point its value is written in its place (spec.md §4.4's
// writeEF). A slot with no status record counts as full.
func (r *Registry) WriteEF(ctx context.Context, dest, src *Word) error {
	key := align(dest)
	rec, err := r.lookupOrCreate(key, true)
	if err != nil {
		return err
	}
	if !rec.full {
		copyWord(dest, src)
		r.gotlockFill(rec, key, dest, false, nil)
		return nil
	}
	err = r.enqueueAndSuspend(ctx, rec, &rec.EFQ, src)
	if err == ErrAllocationFailure {
		r.removeIfIdle(ctx, key, rec)
	}
	return err
}

// WriteEFNB is the non-blocking form of WriteEF: if the slot is
// currently full, it returns ErrOperationFailed instead of blocking,
// without perturbing any queue or the full flag.
func (r *Registry) WriteEFNB(ctx context.Context, dest, src *Word) error {
	key := align(dest)
	rec, err := r.lookupOrCreate(key, true)
	if err != nil {
		return err
	}
	if rec.full {
		idle := rec.idleAndFull()
		rec.lock.Unlock()
		if idle {
			r.removeIfIdle(ctx, key, rec)
		}
		return ErrOperationFailed
	}
	copyWord(dest, src)
	r.gotlockFill(rec, key, dest, false, nil)
	return nil
}

// ReadFF copies src into dest without consuming it, blocking until the
// slot is full if it is not already (spec.md §4.4's readFF — the
// non-consuming read). A slot with no status record at all is treated
// as full, so its current value is copied, and no record is created.
func (r *Registry) ReadFF(ctx context.Context, dest, src *Word) error {
	key := align(src)
	rec, ok := r.lockRecord(key)
	if !ok {
		copyWord(dest, src)
		return nil
	}
	if rec.full {
		copyWord(dest, src)
		rec.lock.Unlock()
		return nil
	}
	return r.enqueueAndSuspend(ctx, rec, &rec.FFQ, dest)
}

// ReadFFNB is the non-blocking form of ReadFF.
func (r *Registry) ReadFFNB(ctx context.Context, dest, src *Word) error {
	key := align(src)
	rec, ok := r.lockRecord(key)
	if !ok {
		copyWord(dest, src)
		return nil
	}
	if !rec.full {
		rec.lock.Unlock()
		return ErrOperationFailed
	}
	copyWord(dest, src)
	rec.lock.Unlock()
	return nil
}

// ReadFE copies src into dest and empties the slot, blocking until it is
// full if it is not already (spec.md §4.4's readFE — the consuming
// read). Unlike ReadFF, an absent record is created (as full, so the
// first reader observes whatever value already sits at src and leaves
// the slot empty behind it).
func (r *Registry) ReadFE(ctx context.Context, dest, src *Word) error {
	key := align(src)
	rec, err := r.lookupOrCreate(key, true)
	if err != nil {
		return err
	}
	if rec.full {
		copyWord(dest, src)
		r.gotlockEmpty(rec, key, src, false, nil)
		return nil
	}
	return r.enqueueAndSuspend(ctx, rec, &rec.FEQ, dest)
}

// ReadFENB is the non-blocking form of ReadFE.
func (r *Registry) ReadFENB(ctx context.Context, dest, src *Word) error {
	key := align(src)
	rec, err := r.lookupOrCreate(key, true)
	if err != nil {
		return err
	}
	if !rec.full {
		rec.lock.Unlock()
		return ErrOperationFailed
	}
	copyWord(dest, src)
	r.gotlockEmpty(rec, key, src, false, nil)
	return nil
}

// enqueueAndSuspend links a new waiter node for the calling goroutine
// onto q, releases rec's lock, and parks the caller until the wake
// engine (or a maintenance sweep's assassination) resumes it.
func (r *Registry) enqueueAndSuspend(ctx context.Context, rec *AddrStat, q *waiterQueue, waiterAddr *Word) error {
	n, err := r.cfg.allocator.AllocWaiter()
	if err != nil {
		rec.lock.Unlock()
		return ErrAllocationFailure
	}
	task := newCallerTask()
	n.addr = waiterAddr
	n.task = task
	q.pushBack(n)
	rec.lock.Unlock()

	r.suspendSelf(ctx, task, rec)
	return nil
}
