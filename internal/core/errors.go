package core

import "github.com/almready/sidecar/internal/sentinel"

// ErrAlreadyStarted is returned when Start is called more than once on the
// same supervisor. The supervisor runs exactly one sidecar per lifetime;
// there is no relaunch.
const ErrAlreadyStarted = sentinel.Error("supervisor already started")

// ErrSidecarUnavailable is returned by Start when the sidecar binary could
// not be launched. The supervisor is in fallback mode: no process exists
// and the caller should use its externally managed backend.
const ErrSidecarUnavailable = sentinel.Error("sidecar unavailable, falling back to external backend")

// ErrHandshakeFailed is returned when a launched sidecar exited (or closed
// its stdout) without ever announcing a port. The child has been killed
// and reaped before this is returned.
const ErrHandshakeFailed = sentinel.Error("sidecar exited without announcing a port")

// ErrHealthTimeout is returned when the health probe budget was exhausted
// without the sidecar accepting a connection. The child has been killed
// and reaped before this is returned.
const ErrHealthTimeout = sentinel.Error("sidecar health check timed out")

// ErrDataDirLocked is returned when another supervisor already holds the
// data-directory lock. Exactly one supervisor may manage a data directory
// at a time.
const ErrDataDirLocked = sentinel.Error("data directory locked by another supervisor")

// ErrTerminated is returned by Start when an external termination won the
// race against startup. The sidecar, if any, was stopped by the
// terminating actor.
const ErrTerminated = sentinel.Error("supervisor terminated during startup")
