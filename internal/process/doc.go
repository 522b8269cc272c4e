// Package process launches and terminates the sidecar child process.
//
// It defines Launch for starting the child with a piped stdout stream,
// Handle for the kill/reap capability of the running child, and Slot for
// one-time atomic transfer of handle ownership between the supervisor's
// startup path and its termination path.
package process
