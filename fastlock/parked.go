package fastlock

import "sync/atomic"

// parked represents a single goroutine blocked trying to acquire a Lock.
//
// To park: allocate with newParked(), set waiting=1, queue q on the
// lock's waiter list, then wait with `for atomic.Load(&p.waiting) != 0 {
// p.sem.p() }`. To wake: unlink from the queue, then atomic.Store(waiting,
// 0) followed by p.sem.v().
type parked struct {
	q       list
	sem     binarySemaphore
	waiting uint32 // non-zero <=> parked; read/written atomically
}

var freeList list
var freeListLock uint32 // spinlock protecting freeList

func newParked() (p *parked) {
	spinTestAndSet(&freeListLock, 1, 1)
	if freeList.next == nil {
		freeList.makeEmpty()
	}
	if !freeList.isEmpty() {
		q := freeList.next
		q.remove()
		p = q.elem
	}
	atomic.StoreUint32(&freeListLock, 0)
	if p == nil {
		p = new(parked)
		p.sem.init()
		p.q.elem = p
	}
	return p
}

func freeParked(p *parked) {
	spinTestAndSet(&freeListLock, 1, 1)
	p.q.insertAfter(&freeList)
	atomic.StoreUint32(&freeListLock, 0)
}
