package feb

import (
	"context"
	"sync/atomic"

	"github.com/vanadium-archive/qfeb/fastlock"
	"github.com/vanadium-archive/qfeb/vlog"
)

// Registry is a FEB registry: a process-wide (or, in this library, a
// caller-owned) array of striped address→status-record maps, along with
// the allocator and scheduler it was configured with. The zero value is
// not usable; construct one with New.
type Registry struct {
	cfg    Config
	stripe []stripedMap

	counters     []uint64       // per-stripe usage counts, if cfg.countThreads
	counterLocks []fastlock.Lock // per-stripe counter locks, if cfg.mutexIncrement
}

// New allocates a Registry's stripe array (spec.md §6's feb_init).
// need_sync in the original C API selected whether the per-stripe map
// used its own internal synchronization; that is now simply the choice
// between WithLockFreeMaps(false) (coarse per-stripe locking, always
// synchronized) and WithLockFreeMaps(true) (hazard-pointer-protected,
// synchronization-free reads).
func New(opts ...Option) (*Registry, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.scheduler == nil {
		cfg.scheduler = newInlineScheduler()
	}

	r := &Registry{cfg: cfg, stripe: make([]stripedMap, cfg.stripes)}
	for i := range r.stripe {
		if cfg.lockFree {
			r.stripe[i] = newMapLockFree(r.cfg.allocator.FreeStatusRecord)
		} else {
			r.stripe[i] = newMapLocked()
		}
	}
	if cfg.countThreads {
		r.counters = make([]uint64, cfg.stripes)
		if cfg.mutexIncrement {
			r.counterLocks = make([]fastlock.Lock, cfg.stripes)
		}
	}
	vlog.Log.VI(2).Infof("feb: registry initialized, stripes=%d lockFree=%v", cfg.stripes, cfg.lockFree)
	return r, nil
}

// Shutdown destroys every per-stripe map, invoking dealloc on every
// status record still resident (spec.md §6's feb_shutdown). It is the
// caller's responsibility to ensure no task is still blocked in the
// registry (spec.md §5's shared-resource policy): Shutdown does not
// itself check for live waiters.
func (r *Registry) Shutdown(dealloc func(*AddrStat)) {
	for _, m := range r.stripe {
		m.forEach(func(_ AlignedAddr, rec *AddrStat) {
			dealloc(rec)
		})
	}
	vlog.Log.VI(2).Info("feb: registry shut down")
}

// Status reports whether the slot at p is currently full. A lookup miss
// is reported as full (spec.md §6's feb_status).
func (r *Registry) Status(p *Word) bool {
	key := align(p)
	rec, ok := r.lockRecord(key)
	if !ok {
		return true
	}
	defer rec.lock.Unlock()
	return rec.full
}

// StripeHits returns the per-stripe lookup counters, when
// WithThreadCounters(true) was used; it returns nil otherwise.
func (r *Registry) StripeHits() []uint64 {
	if r.counters == nil {
		return nil
	}
	out := make([]uint64, len(r.counters))
	for i := range out {
		if r.cfg.mutexIncrement {
			r.counterLocks[i].Lock()
			out[i] = r.counters[i]
			r.counterLocks[i].Unlock()
		} else {
			out[i] = atomic.LoadUint64(&r.counters[i])
		}
	}
	return out
}

func (r *Registry) stripeFor(key AlignedAddr) stripedMap {
	idx := stripeOf(key, r.cfg.stripes)
	if r.counters != nil {
		if r.cfg.mutexIncrement {
			r.counterLocks[idx].Lock()
			r.counters[idx]++
			r.counterLocks[idx].Unlock()
		} else {
			atomic.AddUint64(&r.counters[idx], 1)
		}
	}
	return r.stripe[idx]
}

// lookup returns the status record for key without creating one and
// without locking it. Only safe for inspection that tolerates the
// record having already been replaced or removed by the time the caller
// looks at it; FEB operations that need a stable record use lockRecord
// instead.
func (r *Registry) lookup(key AlignedAddr) (*AddrStat, func(), bool) {
	return r.stripeFor(key).lookup(key)
}

// lockRecord finds the record for key and returns it with its own lock
// already held, or ok=false if no record exists for key. spec.md §4.2
// and §5 require a coarse-locked FEB operation to hold the stripe lock
// across the record-lock acquisition (mirroring the original's
// qt_hash_lock held across QTHREAD_FASTLOCK_LOCK, original_source's
// feb.c, the non-LOCK_FREE_FEBS branch); the underlying stripedMap.lookup
// instead releases the stripe lock (or, for the lock-free map, the
// hazard pointer) before returning, so the record it found can in
// principle already have been drained to idle-and-full and removed —
// and a fresh record inserted for the same key — before the lock above
// is taken. lockRecord closes that window the same way removeIfIdle
// closes the symmetric remove-race: by re-verifying, under the
// candidate's own lock, that it is still the record currently mapped to
// key, and retrying if a replacement raced in ahead of it.
func (r *Registry) lockRecord(key AlignedAddr) (*AddrStat, bool) {
	return lockRecordIn(r.stripeFor(key), key)
}

// lockRecordIn is lockRecord's logic against an already-resolved stripe,
// so callers that also need the stripe for an insert (lookupOrCreate)
// don't pay stripeFor's usage-counter bump twice for one logical access.
func lockRecordIn(m stripedMap, key AlignedAddr) (*AddrStat, bool) {
	for {
		cand, release, ok := m.lookup(key)
		if !ok {
			return nil, false
		}
		cand.lock.Lock()
		cur, curRelease, curOK := m.lookup(key)
		if curOK {
			curRelease()
		}
		release()
		if curOK && cur == cand {
			return cand, true
		}
		cand.lock.Unlock()
	}
}

// lookupOrCreate returns the status record for key, already locked,
// creating and inserting one with full=fullOnCreate if absent. See
// lockRecord for why the found branch re-verifies under lock rather than
// trusting the map's initial, unlocked answer.
func (r *Registry) lookupOrCreate(key AlignedAddr, fullOnCreate bool) (*AddrStat, error) {
	m := r.stripeFor(key)
	for {
		if rec, ok := lockRecordIn(m, key); ok {
			return rec, nil
		}
		rec, err := r.cfg.allocator.AllocStatusRecord()
		if err != nil {
			return nil, ErrAllocationFailure
		}
		rec.full = fullOnCreate
		atomic.StoreInt32(&rec.valid, 1)
		if m.insert(key, rec) {
			rec.lock.Lock()
			return rec, nil
		}
		r.cfg.allocator.FreeStatusRecord(rec)
	}
}

// removeIfIdle re-acquires rec's lock, re-checks the idle-and-full
// condition (state may have changed since the caller last observed it —
// see spec.md §9's note on the coarse-locked FEB_remove race), and
// removes rec from the map only if the condition still holds.
func (r *Registry) removeIfIdle(ctx context.Context, key AlignedAddr, rec *AddrStat) {
	rec.lock.Lock()
	if rec.idleAndFull() {
		if r.cfg.lockFree {
			rec.invalidate()
		}
		r.stripeFor(key).remove(key, rec)
		rec.lock.Unlock()
		if !r.cfg.lockFree {
			r.cfg.allocator.FreeStatusRecord(rec)
		}
		vlog.Log.VI(2).Infof("feb: removed idle-and-full record for %#x", uintptr(key))
		return
	}
	rec.lock.Unlock()
}
