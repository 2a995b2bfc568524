package feb

import (
	"sync/atomic"
	"unsafe"

	"github.com/vanadium-archive/qfeb/fastlock"
)

// hazardSlot is a single published hazard pointer: spec.md §4.2 requires
// lock-free readers to use "hazard slot indexed 0" — in this
// implementation each concurrent reader borrows one such slot for the
// duration of a single lookup, rather than owning a fixed slot forever.
type hazardSlot struct {
	active uint32
	ptr    unsafe.Pointer // *AddrStat currently protected, or nil
}

// hazardDomain is the safe-reclamation facility backing one lock-free
// stripedMap: a pool of hazard slots plus a retire list of status
// records whose removal from the map has been decided but whose memory
// cannot yet be handed back to the Allocator because a reader might
// still be dereferencing it.
type hazardDomain struct {
	slotsMu fastlock.Lock
	slots   []*hazardSlot

	retireMu fastlock.Lock
	retired  []*AddrStat

	dealloc func(*AddrStat)
}

func newHazardDomain(dealloc func(*AddrStat)) *hazardDomain {
	return &hazardDomain{dealloc: dealloc}
}

// acquire claims a free slot, allocating a new one if every existing
// slot is currently borrowed.
func (d *hazardDomain) acquire() *hazardSlot {
	d.slotsMu.Lock()
	for _, s := range d.slots {
		if atomic.CompareAndSwapUint32(&s.active, 0, 1) {
			d.slotsMu.Unlock()
			return s
		}
	}
	s := &hazardSlot{active: 1}
	d.slots = append(d.slots, s)
	d.slotsMu.Unlock()
	return s
}

func (s *hazardSlot) publish(rec *AddrStat) {
	atomic.StorePointer(&s.ptr, unsafe.Pointer(rec))
}

// release clears the slot's published pointer and returns it to the free
// pool.
func (d *hazardDomain) release(s *hazardSlot) {
	atomic.StorePointer(&s.ptr, nil)
	atomic.StoreUint32(&s.active, 0)
}

// protect borrows a slot and publishes rec into it.
func (d *hazardDomain) protect(rec *AddrStat) *hazardSlot {
	s := d.acquire()
	s.publish(rec)
	return s
}

// isHazarded reports whether any currently-borrowed slot still points at
// rec.
func (d *hazardDomain) isHazarded(rec *AddrStat) bool {
	d.slotsMu.Lock()
	defer d.slotsMu.Unlock()
	target := unsafe.Pointer(rec)
	for _, s := range d.slots {
		if atomic.LoadPointer(&s.ptr) == target {
			return true
		}
	}
	return false
}

// retire defers rec's reclamation until no hazard slot protects it, then
// sweeps the whole retired list for anything that has since become
// reclaimable. Sweeping is serialized by retireMu, which only other
// retirers (i.e. other removals) take. Each isHazarded check holds
// slotsMu, which readers also take briefly in acquire to borrow a slot,
// so a sweep can delay a reader's slot acquisition.
func (d *hazardDomain) retire(rec *AddrStat) {
	d.retireMu.Lock()
	defer d.retireMu.Unlock()

	d.retired = append(d.retired, rec)
	kept := d.retired[:0]
	for _, r := range d.retired {
		if d.isHazarded(r) {
			kept = append(kept, r)
		} else {
			d.dealloc(r)
		}
	}
	d.retired = kept
}
