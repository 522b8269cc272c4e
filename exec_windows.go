//go:build windows

package sidecar

// ExecutableName appends the platform executable suffix to a bare binary
// name, so callers can build the sidecar path without per-OS switches.
func ExecutableName(base string) string {
	return base + ".exe"
}
