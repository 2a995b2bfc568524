package feb

import "errors"

// ErrOperationFailed is returned by the non-blocking (*_nb style) FEB
// operations when the precondition they require is not met. It is
// recoverable: the registry's state (full flag, waiter queues) is
// unperturbed when this is returned.
var ErrOperationFailed = errors.New("feb: operation failed (precondition not met)")

// ErrAllocationFailure is returned when the Allocator backing a registry
// cannot produce a status record or waiter record. Any locks the failing
// operation held are released before this is returned; no queue mutation
// from that operation is retained.
var ErrAllocationFailure = errors.New("feb: allocation failure")
