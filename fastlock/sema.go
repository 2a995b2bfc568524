package fastlock

// binarySemaphore is a channel-backed binary semaphore used to park and
// wake a single goroutine.
type binarySemaphore struct {
	ch chan struct{}
}

func (s *binarySemaphore) init() {
	s.ch = make(chan struct{}, 1)
}

func (s *binarySemaphore) p() {
	<-s.ch
}

func (s *binarySemaphore) v() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}
