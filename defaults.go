package sidecar

import "time"

// Default configuration values for New. These constants are exported so
// callers can build custom configurations relative to them (e.g.,
// 2 * DefaultStopTimeout).
const (
	// DefaultEnvPrefix names the environment contract with the sidecar:
	// the child receives <prefix>_DATA_DIR and <prefix>_CORS_ORIGINS.
	DefaultEnvPrefix = "SIDECAR"

	// DefaultProcessName is used in log lines and as the base name of the
	// stderr log file when capture is enabled.
	DefaultProcessName = "sidecar"

	// DefaultHealthAttempts is the fixed number of TCP connection attempts
	// the health probe makes against the announced port.
	DefaultHealthAttempts = 60

	// DefaultHealthInterval is the delay between health probe attempts.
	// Together with DefaultHealthAttempts this gives the sidecar 30
	// seconds to start accepting connections.
	DefaultHealthInterval = 500 * time.Millisecond

	// DefaultStopTimeout is the maximum time Terminate waits for the
	// sidecar to exit. A SIGTERM is sent first; SIGKILL follows if the
	// process lingers past the grace period.
	DefaultStopTimeout = 10 * time.Second
)
