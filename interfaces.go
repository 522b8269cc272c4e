package sidecar

import (
	"context"

	"github.com/almready/sidecar/internal/core"
)

// State is the supervisor's lifecycle position. Transitions are
// monotonic; see the State* constants.
type State = core.State

// Lifecycle states reported by Supervisor.State.
const (
	// StateLaunching is the initial state, before and during process creation.
	StateLaunching = core.StateLaunching

	// StateAwaitingHandshake means the sidecar is running and has not yet
	// announced its port.
	StateAwaitingHandshake = core.StateAwaitingHandshake

	// StateProbing means the port is known and the health probe is running.
	StateProbing = core.StateProbing

	// StateReady means the sidecar accepts connections on its announced port.
	StateReady = core.StateReady

	// StateFallback means the binary could not be launched and the caller
	// should use an externally managed backend.
	StateFallback = core.StateFallback

	// StateFailed means a launched sidecar never became usable and has been
	// killed and reaped.
	StateFailed = core.StateFailed

	// StateTerminated means an external shutdown stopped the sidecar (or
	// found nothing running).
	StateTerminated = core.StateTerminated
)

// Supervisor manages the lifecycle of one sidecar process.
//
// Callers follow this ordering:
//
//	New → Start (once) → Terminate
//
// Terminate is safe to call at any point, including before Start and
// more than once. See each method's documentation for error conditions.
type Supervisor interface {
	// Start runs the whole startup sequence and blocks until the sidecar
	// is ready, unusable, or terminated. It may be called exactly once.
	//
	// Returns nil when the sidecar is ready and the readiness callback has
	// run. Returns an error wrapping ErrSidecarUnavailable when the binary
	// could not be launched (fallback mode). Returns ErrAlreadyStarted on
	// a second call, ErrTerminated when Terminate won a race against
	// startup, and an error wrapping ErrDataDirLocked when another
	// supervisor owns the data directory.
	//
	// A launched sidecar that never announces a port or never passes the
	// health probe is fatal: the child is killed and reaped and the
	// process exits with a non-zero status, so ErrHandshakeFailed and
	// ErrHealthTimeout normally do not return.
	Start(ctx context.Context) error

	// Terminate kills the sidecar and waits for it to exit. Safe to call
	// at any lifecycle point, from any goroutine, and repeatedly. When no
	// process exists (fallback mode, pre-launch, already terminated) it
	// only records the state change.
	Terminate()

	// State returns the current lifecycle state.
	State() State

	// Port returns the sidecar's announced port. The boolean is false
	// until the supervisor reaches StateReady and after termination.
	Port() (uint16, bool)
}
