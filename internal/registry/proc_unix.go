//go:build !windows

package registry

import (
	"errors"
	"syscall"
)

// processAlive reports whether a process with the given PID exists.
// Signal 0 performs the existence check without delivering anything.
// EPERM means the PID exists but belongs to another user; that still
// counts as alive (we must not treat it as reapable-and-gone).
func processAlive(pid int) bool {
	err := syscall.Kill(pid, 0)
	return err == nil || errors.Is(err, syscall.EPERM)
}

// signalTerm asks the process to exit gracefully. Errors are ignored: the
// process may have exited between the liveness check and the signal.
func signalTerm(pid int) {
	_ = syscall.Kill(pid, syscall.SIGTERM)
}

// signalKill forcibly terminates the process. Errors are ignored for the
// same reason as signalTerm.
func signalKill(pid int) {
	_ = syscall.Kill(pid, syscall.SIGKILL)
}
