//go:build !linux

package process

import "os/exec"

// configureSysProcAttr is a no-op on non-Linux platforms.
// Pdeathsig (parent-death signal) is a Linux-only kernel feature; on other
// platforms the PID registry's orphan reaping covers supervisor crashes.
func configureSysProcAttr(_ *exec.Cmd) {}
