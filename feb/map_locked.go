package feb

import "github.com/vanadium-archive/qfeb/fastlock"

// mapLocked is the coarse-locked stripedMap: one fastlock.Lock guards a
// plain Go map for the whole stripe. lookup releases mu before
// returning, so a record it hands back is not yet pinned against
// concurrent removal-and-replacement; spec.md §4.2 and §5's
// lock-acquisition-order rule (stripe lock, then record lock, with no
// gap between them) is instead satisfied one level up, by
// Registry.lockRecord/lockRecordIn re-verifying the record's identity
// under its own lock before treating it as stable.
type mapLocked struct {
	mu  fastlock.Lock
	m   map[AlignedAddr]*AddrStat
	idx *sweepIndex
}

func newMapLocked() *mapLocked {
	return &mapLocked{m: make(map[AlignedAddr]*AddrStat), idx: newSweepIndex()}
}

func noRelease() {}

func (s *mapLocked) lookup(key AlignedAddr) (*AddrStat, func(), bool) {
	s.mu.Lock()
	rec, ok := s.m[key]
	s.mu.Unlock()
	return rec, noRelease, ok
}

func (s *mapLocked) insert(key AlignedAddr, rec *AddrStat) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.m[key]; exists {
		return false
	}
	s.m[key] = rec
	s.idx.add(key)
	return true
}

func (s *mapLocked) remove(key AlignedAddr, rec *AddrStat) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.m[key]; !ok || cur != rec {
		return false
	}
	delete(s.m, key)
	s.idx.remove(key)
	return true
}

func (s *mapLocked) forEach(fn func(key AlignedAddr, rec *AddrStat)) {
	// The key order comes from the sweep index (deterministic ascending
	// address order) rather than Go's randomized map iteration, which
	// matters for maintenance-sweep tests that assert on visit order.
	// Keys and records are snapshotted under the stripe lock, then fn
	// runs outside it: fn takes each record's own lock, and the lock
	// acquisition order (§5) forbids holding a stripe lock while also
	// trying to take an arbitrary number of record locks in sequence (a
	// maintenance sweep is not on the hot FEB-operation path, so the
	// tiny window where this snapshot can go stale is acceptable —
	// matches taskfilter's documented tolerance for "one at a time").
	keys := s.idx.ascendingKeys()

	type kv struct {
		key AlignedAddr
		rec *AddrStat
	}
	s.mu.Lock()
	snapshot := make([]kv, 0, len(keys))
	for _, k := range keys {
		if r, ok := s.m[k]; ok {
			snapshot = append(snapshot, kv{k, r})
		}
	}
	s.mu.Unlock()

	for _, e := range snapshot {
		fn(e.key, e.rec)
	}
}
