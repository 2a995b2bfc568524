package feb

import "fmt"

// DefaultStripes is the stripe count used when a Config does not specify
// one: a power of two large enough to keep contention low on a modest
// number of cores, matching QTHREAD_LOCKING_STRIPES's usual build default.
const DefaultStripes = 128

// Config is the build-time configuration surface for a Registry. Unlike
// the rest of the FEB contract, this is assembled in code via functional
// options, not parsed from flags or environment variables: the core
// itself recognizes no CLI surface (see the demo command in
// cmd/qfebdemo for a program that exposes these as flags).
type Config struct {
	stripes          uint32
	lockFree         bool
	mutexIncrement   bool
	countThreads     bool
	allocator        Allocator
	scheduler        Scheduler
}

// Option configures a Registry at construction time.
type Option func(*Config)

// WithStripes sets the number of stripes in the map array. Must be a
// power of two; New returns an error otherwise.
func WithStripes(n uint32) Option {
	return func(c *Config) { c.stripes = n }
}

// WithLockFreeMaps selects the hazard-pointer-based lock-free striped
// map instead of the coarse-locked one.
func WithLockFreeMaps(enabled bool) Option {
	return func(c *Config) { c.lockFree = enabled }
}

// WithMutexIncrement selects whether per-stripe usage counters (enabled
// via WithThreadCounters) are maintained under a lock versus via atomic
// increment. It has no effect unless WithThreadCounters(true) is also
// set.
func WithMutexIncrement(enabled bool) Option {
	return func(c *Config) { c.mutexIncrement = enabled }
}

// WithThreadCounters enables per-stripe usage counters, incremented on
// every lookup that lands in a given stripe. Mirrors the C source's
// QTHREAD_COUNT_THREADS build option.
func WithThreadCounters(enabled bool) Option {
	return func(c *Config) { c.countThreads = enabled }
}

// WithAllocator overrides the Allocator used for status and waiter
// records. The default allocator uses the Go heap and never fails;
// supplying one that can fail is how AllocationFailure paths are
// exercised in tests.
func WithAllocator(a Allocator) Option {
	return func(c *Config) { c.allocator = a }
}

// WithScheduler overrides the Scheduler used to suspend and re-enqueue
// blocked callers. The default schedules nothing: blocking operations
// without an explicit scheduler fall back to parking the calling
// goroutine directly (see Registry's out-of-scheduler-context fallback).
func WithScheduler(s Scheduler) Option {
	return func(c *Config) { c.scheduler = s }
}

func defaultConfig() Config {
	return Config{
		stripes:   DefaultStripes,
		allocator: defaultAllocator{},
	}
}

func (c *Config) validate() error {
	if c.stripes == 0 || c.stripes&(c.stripes-1) != 0 {
		return fmt.Errorf("feb: Stripes must be a power of two, got %d", c.stripes)
	}
	return nil
}
