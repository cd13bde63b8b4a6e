//go:build linux

package executor

import "syscall"

// lowerWorkerPriority nices the calling worker goroutine's OS thread
// below interactive priority (spec §4.3 rule 4). Best effort: a failure
// here never prevents the worker from running jobs.
func lowerWorkerPriority() {
	_ = syscall.Setpriority(syscall.PRIO_PROCESS, 0, 10)
}
