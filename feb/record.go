package feb

import (
	"sync/atomic"

	"github.com/vanadium-archive/qfeb/fastlock"
)

// AddrStat is the per-address status record: the full/empty flag plus
// the three waiter queues, owned by the striped map while present in
// it and by nobody once removed.
//
// Invariant: a record exists in the map iff full == false, or at least
// one of EFQ/FEQ/FFQ is non-empty. Whenever a wake-engine drain leaves a
// record idle-and-full, the operation that produced that state removes
// it from the map before releasing the view it took of the map.
type AddrStat struct {
	lock fastlock.Lock // protects full, EFQ, FEQ, FFQ

	full bool
	EFQ  waiterQueue // writers waiting for empty (writeEF)
	FEQ  waiterQueue // consuming readers waiting for full (readFE)
	FFQ  waiterQueue // non-consuming readers waiting for full (readFF)

	// valid is only meaningful under the lock-free map: it is set to 0
	// exactly once, under lock, immediately before the record is
	// removed from the map, and hazard-pointer readers re-check it
	// after publishing their hazard pointer.
	valid int32
}

func newAddrStat(full bool) *AddrStat {
	return &AddrStat{full: full, valid: 1}
}

// idleAndFull reports whether r is in the state that requires removal
// from the map: full, with nothing left to drain. Must be called with
// r.lock held.
func (r *AddrStat) idleAndFull() bool {
	return r.full && r.EFQ.empty() && r.FEQ.empty() && r.FFQ.empty()
}

// isValid reports whether the record is still live under the lock-free
// map's semantics. Under the coarse-locked map this is always true:
// invalidate is only called in lock-free mode.
func (r *AddrStat) isValid() bool {
	return atomic.LoadInt32(&r.valid) != 0
}

// invalidate marks r logically removed. Must be called with r.lock held,
// and exactly once per record, immediately before the map-level remove.
func (r *AddrStat) invalidate() {
	atomic.StoreInt32(&r.valid, 0)
}
