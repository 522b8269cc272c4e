// Package core provides the internal implementation of the sidecar
// supervisor. It contains the Supervisor (monotonic state machine driving
// launch, port handshake, health probe, and teardown), the data-directory
// lock that enforces one supervisor per data directory, and the glue
// between the process, handshake, probe, and registry packages.
package core
