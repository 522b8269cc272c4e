//go:build !windows

package sidecar

// ExecutableName appends the platform executable suffix to a bare binary
// name. On non-Windows platforms the name is returned unchanged.
func ExecutableName(base string) string {
	return base
}
