package feb

import "testing"

// racyMap wraps a real stripedMap and, for a configured number of calls,
// answers lookup with a stale record identity instead of delegating —
// simulating the window lockRecordIn must close: the record a caller's
// first, unlocked lookup found has since been removed and replaced by a
// fresh one for the same key.
type racyMap struct {
	stripedMap
	stale      *AddrStat
	staleCalls int
}

func (m *racyMap) lookup(key AlignedAddr) (*AddrStat, func(), bool) {
	if m.staleCalls > 0 {
		m.staleCalls--
		return m.stale, noRelease, true
	}
	return m.stripedMap.lookup(key)
}

func TestLockRecordInRetriesPastAStaleRecord(t *testing.T) {
	real := newMapLocked()
	key := AlignedAddr(0x1000)
	fresh := newAddrStat(true)
	real.insert(key, fresh)

	stale := newAddrStat(true)
	m := &racyMap{stripedMap: real, stale: stale, staleCalls: 1}

	// The first lookup (unverified) sees the stale record; the
	// verification lookup inside the same iteration sees the real one
	// and disagrees, so lockRecordIn must retry rather than returning
	// the stale record locked.
	rec, ok := lockRecordIn(m, key)
	if !ok {
		t.Fatal("lockRecordIn reported no record, want the fresh one")
	}
	if rec != fresh {
		t.Fatalf("lockRecordIn returned %p, want the fresh record %p (stale %p leaked through)", rec, fresh, stale)
	}
	rec.lock.Unlock()

	if stale.lock.TryLock() {
		// The stale record was never a live candidate, so lockRecordIn
		// must not have left its lock held.
		stale.lock.Unlock()
	} else {
		t.Fatal("lockRecordIn left the stale record's lock held")
	}
}

func TestLockRecordReturnsFalseOnAbsentKey(t *testing.T) {
	r := mustRegistry(t)
	if _, ok := r.lockRecord(AlignedAddr(0xdead)); ok {
		t.Fatal("lockRecord found a record for a key nothing ever inserted")
	}
}
