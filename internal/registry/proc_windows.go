//go:build windows

package registry

import "os"

// processAlive reports whether a process with the given PID exists.
// On Windows, FindProcess opens a real process handle and fails when the
// PID is gone.
func processAlive(pid int) bool {
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	_ = p.Release()
	return true
}

// signalTerm terminates the process. Windows has no SIGTERM equivalent
// for unrelated processes, so graceful and forced termination coincide.
func signalTerm(pid int) {
	signalKill(pid)
}

// signalKill forcibly terminates the process. Errors are ignored: the
// process may have exited between the liveness check and the kill.
func signalKill(pid int) {
	p, err := os.FindProcess(pid)
	if err != nil {
		return
	}
	_ = p.Kill()
	_ = p.Release()
}
