//go:build !linux

package executor

// lowerWorkerPriority is a no-op on platforms without a cheap best-effort
// thread-priority knob exposed to a single goroutine (spec §4.3 rule 4).
func lowerWorkerPriority() {}
