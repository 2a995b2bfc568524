package feb

import "sync/atomic"

// lockFreeBuckets is the number of CAS-linked-list buckets per stripe
// under the lock-free map. It only needs to be large enough that a
// single stripe's bucket chains stay short; the outer striping already
// does most of the work of spreading contention.
const lockFreeBuckets = 64

// lfNode is one immutable entry in a bucket's singly-linked list. Nodes
// are never mutated after being linked: insert prepends a new node,
// remove rebuilds the prefix up to (but excluding) the removed node and
// shares the remainder, in the usual lock-free-list style.
type lfNode struct {
	key  AlignedAddr
	rec  *AddrStat
	next *lfNode
}

// mapLockFree is the hazard-pointer-protected stripedMap. Readers take
// no bucket lock (borrowing a hazard slot takes the domain's slotsMu
// briefly): they follow an unsafe.Pointer-free Go pointer chain (safe
// because Go's GC keeps every reachable node alive regardless of
// concurrent mutation — what hazard pointers protect here is not memory
// safety but the Allocator's ability to recycle a *AddrStat for a new
// address the instant it believes no reader can still be examining it).
type mapLockFree struct {
	buckets [lockFreeBuckets]atomic.Pointer[lfNode]
	haz     *hazardDomain
}

func newMapLockFree(dealloc func(*AddrStat)) *mapLockFree {
	return &mapLockFree{haz: newHazardDomain(dealloc)}
}

func (m *mapLockFree) bucket(key AlignedAddr) *atomic.Pointer[lfNode] {
	return &m.buckets[uint64(hash64(uint64(key)))%lockFreeBuckets]
}

func findNode(head *lfNode, key AlignedAddr) *lfNode {
	for n := head; n != nil; n = n.next {
		if n.key == key {
			return n
		}
	}
	return nil
}

func (m *mapLockFree) lookup(key AlignedAddr) (*AddrStat, func(), bool) {
	b := m.bucket(key)
	for {
		head := b.Load()
		n := findNode(head, key)
		if n == nil {
			return nil, noRelease, false
		}
		slot := m.haz.protect(n.rec)

		// Re-verify: the bucket may have been mutated (this node
		// removed, or the list rebuilt) between our unprotected read
		// and publishing the hazard pointer.
		head2 := b.Load()
		if findNode(head2, key) != n {
			m.haz.release(slot)
			continue
		}
		if !n.rec.isValid() {
			m.haz.release(slot)
			return nil, noRelease, false
		}
		release := func() { m.haz.release(slot) }
		return n.rec, release, true
	}
}

func (m *mapLockFree) insert(key AlignedAddr, rec *AddrStat) bool {
	b := m.bucket(key)
	for {
		head := b.Load()
		if findNode(head, key) != nil {
			return false
		}
		n := &lfNode{key: key, rec: rec, next: head}
		if b.CompareAndSwap(head, n) {
			return true
		}
	}
}

// remove requires the caller to already hold rec.lock and to have called
// rec.invalidate() under that same lock, per the lock-free mode's
// contract (spec.md §4.2).
func (m *mapLockFree) remove(key AlignedAddr, rec *AddrStat) bool {
	b := m.bucket(key)
	for {
		head := b.Load()
		target := findNode(head, key)
		if target == nil || target.rec != rec {
			return false
		}
		newHead := copyExcluding(head, target)
		if b.CompareAndSwap(head, newHead) {
			m.haz.retire(rec)
			return true
		}
	}
}

// copyExcluding rebuilds the prefix of the list up to (not including)
// target, then shares target.next as the remainder — target itself, and
// anything before it in traversal order, is not reused.
func copyExcluding(head, target *lfNode) *lfNode {
	if head == target {
		return target.next
	}
	newHead := &lfNode{key: head.key, rec: head.rec}
	cur := newHead
	for n := head.next; n != target; n = n.next {
		cur.next = &lfNode{key: n.key, rec: n.rec}
		cur = cur.next
	}
	cur.next = target.next
	return newHead
}

func (m *mapLockFree) forEach(fn func(key AlignedAddr, rec *AddrStat)) {
	for i := range m.buckets {
		head := m.buckets[i].Load()
		for n := head; n != nil; n = n.next {
			slot := m.haz.protect(n.rec)
			if n.rec.isValid() {
				fn(n.key, n.rec)
			}
			m.haz.release(slot)
		}
	}
}
