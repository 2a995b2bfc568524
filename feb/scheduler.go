package feb

import "context"

// Worker identifies one shepherd thread of the external task scheduler.
// The registry never constructs a Worker itself; it only compares
// identities it received back from the Scheduler.
type Worker interface {
	// ID is a small dense identifier, used only for logging.
	ID() int
}

// Task is the scheduler-owned handle for a single blocked or nascent
// caller. Resume is invoked by the scheduler once the task has been
// placed on a ready-queue and reaches the front of it; for a task
// blocked inside a Registry operation, Resume is expected to make that
// same goroutine's blocking call return.
type Task interface {
	Resume()

	// TargetWorker returns the worker this task is pinned to, or
	// (nil, false) if it has no affinity, in which case EnqueueReady
	// uses the current worker.
	TargetWorker() (Worker, bool)
}

// Scheduler is the external task scheduler's contract with the FEB core,
// consisting of exactly the primitives spec.md §4.6 lists. The core
// never suspends a task or manipulates ready-queues except through this
// interface.
type Scheduler interface {
	// CurrentWorker returns the worker the calling goroutine is
	// currently executing on behalf of, or (nil, false) if the caller
	// is not running on a scheduler worker at all (spec.md §4.4's
	// out-of-scheduler-context case).
	CurrentWorker(ctx context.Context) (Worker, bool)

	// SuspendCurrent tells the scheduler that self is about to block.
	// It is bookkeeping only: the registry parks the calling goroutine
	// itself until some later call to EnqueueReady names self, so an
	// implementation may return immediately. blockedOn identifies the status
	// record the caller is waiting on, for diagnostics only: by the
	// time SuspendCurrent is called, self's waiter node is already
	// linked into one of blockedOn's queues and blockedOn's lock has
	// already been released by the caller.
	SuspendCurrent(ctx context.Context, self Task, blockedOn *AddrStat)

	// EnqueueReady places t on the ready-queue of w (if w is non-nil)
	// or of the current worker (if w is nil), causing t.Resume() to
	// run once scheduled.
	EnqueueReady(w Worker, t Task)

	// Assassinate tells the scheduler that t's waiter node has been
	// unlinked by the maintenance taskfilter sweep, its only caller;
	// the registry takes no further action on t's behalf and never
	// resumes it. It is called with the record lock held.
	Assassinate(t Task)
}

// Spawner is an optional extension a Scheduler may implement to support
// the out-of-scheduler-context fallback (spec.md §4.4, §9): submitting a
// helper function to run in a tracked worker context, without blocking
// the caller. A Scheduler that does not implement Spawner still works;
// the fallback simply degrades to parking the calling goroutine on its
// own completion latch without any scheduler-side bookkeeping call.
type Spawner interface {
	Spawn(fn func())
}
