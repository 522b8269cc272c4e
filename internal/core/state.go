package core

// State is the supervisor's lifecycle position. Transitions are monotonic:
// no state is ever revisited. StateReady, StateFallback, StateFailed, and
// StateTerminated are terminal for the startup phase, though StateReady
// still moves to StateTerminated on shutdown.
type State int

const (
	// StateLaunching is the initial state: the sidecar process is being
	// created. The zero value, so a fresh supervisor reports it before
	// Start is called.
	StateLaunching State = iota

	// StateAwaitingHandshake means the process is running and the
	// supervisor is waiting for its one-time port announcement on stdout.
	StateAwaitingHandshake

	// StateProbing means a port was announced and the health probe is
	// confirming the sidecar accepts connections.
	StateProbing

	// StateReady means the sidecar's port is known and reachable; the
	// readiness callback has been handed the port.
	StateReady

	// StateFallback means the sidecar binary could not be launched and the
	// caller is expected to use an externally managed backend instead.
	// This is a deliberate mode, not an error artifact: no handle exists
	// and termination is a no-op.
	StateFallback

	// StateFailed means a launched sidecar never became usable (no port
	// announcement, or the health probe budget ran out). The child has
	// been killed and reaped; the supervisor escalates by terminating the
	// whole process.
	StateFailed

	// StateTerminated means an external shutdown took ownership of the
	// sidecar and killed it (or found nothing to kill). Reachable from
	// every other state; entering it twice is a no-op.
	StateTerminated
)

// String returns a human-readable state name for logging.
func (s State) String() string {
	switch s {
	case StateLaunching:
		return "launching"
	case StateAwaitingHandshake:
		return "awaiting-handshake"
	case StateProbing:
		return "probing"
	case StateReady:
		return "ready"
	case StateFallback:
		return "fallback-no-sidecar"
	case StateFailed:
		return "failed"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}
