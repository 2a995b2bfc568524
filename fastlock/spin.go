package fastlock

import (
	"runtime"
	"sync/atomic"
)

// spinAttempts is the number of busy-spin rounds attempted before a
// contended lockSlow loop starts yielding the P via runtime.Gosched.
// spin_amd64.go overrides this on amd64 Linux, where x/sys/cpu can tell
// us whether the host is likely to have cheap pause instructions.
var spinAttempts uint = 7

// spinDelay is used in spinloops to delay resumption of the loop.
func spinDelay(attempts uint) uint {
	if attempts < spinAttempts {
		for i := 0; i != 1<<attempts; i++ {
		}
		attempts++
	} else {
		runtime.Gosched()
	}
	return attempts
}

// spinTestAndSet spins until (*w & test) == 0, then atomically sets
// *w |= set and returns the previous value of *w.
func spinTestAndSet(w *uint32, test uint32, set uint32) uint32 {
	var attempts uint
	old := atomic.LoadUint32(w)
	for old&test != 0 || !atomic.CompareAndSwapUint32(w, old, old|set) {
		attempts = spinDelay(attempts)
		old = atomic.LoadUint32(w)
	}
	return old
}
