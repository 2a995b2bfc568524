package feb

// stripedMap is a single stripe's concurrent key→*AddrStat map. The
// Registry holds an array of Config.stripes of these, selected by
// stripeOf. Two implementations exist: mapLocked (a coarse per-stripe
// mutex) and mapLockFree (hazard-pointer-protected). Both satisfy this
// interface so the rest of the package is agnostic to the choice.
type stripedMap interface {
	// lookup returns the record for key, if present, plus a release
	// function the caller must invoke once it no longer needs the
	// record pinned — in practice, immediately after acquiring the
	// record's own lock (or immediately, if lookup returned ok==false).
	// Under mapLocked, release is a no-op and the record is not pinned:
	// the stripe lock is dropped before lookup returns, so callers
	// re-verify under the record's own lock (see lockRecordIn). Under
	// mapLockFree, release lets go of
	// the hazard pointer that keeps a pooled record from being handed
	// back to the allocator while still being inspected.
	lookup(key AlignedAddr) (rec *AddrStat, release func(), ok bool)

	// insert adds rec under key, returning false if a concurrent insert
	// for the same key won the race (the caller's rec was never
	// published and should be freed back to the allocator).
	insert(key AlignedAddr, rec *AddrStat) bool

	// remove deletes key from the map, provided the currently-mapped
	// record is identical to rec (by pointer). Must be called with
	// rec.lock held, and — in the lock-free map — only after
	// rec.invalidate() has already run. Returns whether removal
	// occurred.
	remove(key AlignedAddr, rec *AddrStat) bool

	// forEach invokes fn once per (key, record) pair currently in the
	// stripe. Used only by maintenance sweeps, which take each record's
	// own lock inside fn and tolerate doing so one at a time.
	forEach(fn func(key AlignedAddr, rec *AddrStat))
}
