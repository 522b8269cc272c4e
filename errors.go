package sidecar

import "github.com/almready/sidecar/internal/core"

// Sentinel errors for error inspection with errors.Is.
// These are immutable constants safe for use in wrapped error chain comparison.
const (
	// ErrAlreadyStarted is returned by Start when called more than once on
	// the same supervisor. A supervisor runs exactly one sidecar.
	ErrAlreadyStarted = core.ErrAlreadyStarted

	// ErrSidecarUnavailable is wrapped in Start's error when the binary
	// could not be launched. The supervisor is in fallback mode: no
	// process exists and the caller should use its externally managed
	// backend.
	ErrSidecarUnavailable = core.ErrSidecarUnavailable

	// ErrHandshakeFailed means a launched sidecar exited (or closed its
	// stdout) without ever announcing a port. The child is killed and
	// reaped before this surfaces, and the supervising process then exits
	// with a non-zero status.
	ErrHandshakeFailed = core.ErrHandshakeFailed

	// ErrHealthTimeout means the probe budget ran out without the sidecar
	// accepting a TCP connection. Handled like ErrHandshakeFailed.
	ErrHealthTimeout = core.ErrHealthTimeout

	// ErrDataDirLocked is wrapped in Start's error when another supervisor
	// already holds the data-directory lock.
	ErrDataDirLocked = core.ErrDataDirLocked

	// ErrTerminated is returned by Start when an external Terminate won
	// the race against startup.
	ErrTerminated = core.ErrTerminated
)
