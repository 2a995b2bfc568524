package feb

// Allocator is the injectable backing store for status and waiter
// records. The spec treats memory pools for these small, fixed-size
// records as an external concern (see spec.md §1's Non-goals): the core
// only presumes this interface, which a caller can back with a sync.Pool,
// a fixed-size slab, or — as in the default — plain heap allocation.
type Allocator interface {
	AllocStatusRecord() (*AddrStat, error)
	FreeStatusRecord(*AddrStat)
	AllocWaiter() (*AddrRes, error)
	FreeWaiter(*AddrRes)
}

// defaultAllocator is the zero-configuration Allocator: it never fails,
// and leaves reclamation to the garbage collector.
type defaultAllocator struct{}

func (defaultAllocator) AllocStatusRecord() (*AddrStat, error) { return &AddrStat{valid: 1}, nil }
func (defaultAllocator) FreeStatusRecord(*AddrStat)            {}
func (defaultAllocator) AllocWaiter() (*AddrRes, error)        { return &AddrRes{}, nil }
func (defaultAllocator) FreeWaiter(*AddrRes)                   {}
