//go:build linux && amd64

package fastlock

import "golang.org/x/sys/cpu"

// On older amd64 cores lacking SSE4.2 (a reasonable proxy the stdlib
// itself avoids exposing directly for "PAUSE is cheap"), busy-spinning a
// contended Lock is more wasteful than yielding early, so the spin phase
// is shortened before falling back to runtime.Gosched.
func init() {
	if !cpu.X86.HasSSE42 {
		spinAttempts = 3
	}
}
