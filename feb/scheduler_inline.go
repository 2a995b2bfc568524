package feb

import "context"

// inlineScheduler is the zero-configuration Scheduler installed by New
// when the caller does not supply WithScheduler. There are no tracked
// workers at all, so every blocking operation takes the
// out-of-scheduler-context fallback, and EnqueueReady runs the woken
// task immediately rather than placing it on a queue — safe because
// Task.Resume is expected only to unblock an already-parked goroutine,
// never to run arbitrary long work inline.
type inlineScheduler struct{}

func newInlineScheduler() *inlineScheduler { return &inlineScheduler{} }

func (inlineScheduler) CurrentWorker(context.Context) (Worker, bool) { return nil, false }

func (inlineScheduler) SuspendCurrent(context.Context, Task, *AddrStat) {}

func (inlineScheduler) EnqueueReady(_ Worker, t Task) { t.Resume() }

func (inlineScheduler) Assassinate(Task) {}
