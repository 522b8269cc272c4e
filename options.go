package sidecar

import (
	"fmt"
	"time"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("sidecar: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("sidecar: %s must not be empty", name))
	}
}

// Option configures a Supervisor during construction via New. Each With*
// function returns an Option that sets a specific field.
//
// Several With* functions panic on invalid input (empty paths,
// non-positive counts or durations). These panics are intentional: option
// values are typically compile-time constants or package-level variables,
// so an invalid value indicates a programmer error rather than a runtime
// condition. The pattern mirrors [regexp.MustCompile] — fail fast during
// initialization instead of returning errors that would be universally
// fatal anyway.
type Option func(*supervisorConfig)

// WithBinary sets the path to the sidecar executable. Required: New
// returns an error when no binary is configured. The path is not checked
// for existence here — a missing binary surfaces at Start as fallback
// mode, not as a construction error.
//
// Panics if binPath is empty.
func WithBinary(binPath string) Option {
	requireNonEmpty("sidecar binary path", binPath)
	return func(c *supervisorConfig) {
		c.Binary = binPath
	}
}

// WithDataDir sets the sidecar's persistent data directory. Required:
// New returns an error when no data directory is configured. The
// directory is created at Start if missing, and its path is handed to
// the child via the <prefix>_DATA_DIR environment variable.
//
// Panics if dir is empty.
func WithDataDir(dir string) Option {
	requireNonEmpty("data directory", dir)
	return func(c *supervisorConfig) {
		c.DataDir = dir
	}
}

// WithEnvPrefix sets the prefix of the environment variables passed to
// the sidecar (<prefix>_DATA_DIR, <prefix>_CORS_ORIGINS).
//
// Default: DefaultEnvPrefix.
//
// Panics if prefix is empty.
func WithEnvPrefix(prefix string) Option {
	requireNonEmpty("env prefix", prefix)
	return func(c *supervisorConfig) {
		c.EnvPrefix = prefix
	}
}

// WithCORSOrigins sets the origins the sidecar's HTTP server must accept,
// passed to the child joined with commas. An empty list is valid: the
// variable is still set, with an empty value.
func WithCORSOrigins(origins ...string) Option {
	return func(c *supervisorConfig) {
		c.CORSOrigins = append([]string(nil), origins...)
	}
}

// WithProcessName sets the name used for the sidecar in log lines and in
// the stderr log file name.
//
// Default: DefaultProcessName.
//
// Panics if name is empty.
func WithProcessName(name string) Option {
	requireNonEmpty("process name", name)
	return func(c *supervisorConfig) {
		c.ProcessName = name
	}
}

// WithHealthAttempts sets the number of TCP connection attempts the
// health probe makes before declaring the sidecar unusable. The budget
// is attempt-counted, not time-bounded: a success on the final attempt
// still counts.
//
// Default: DefaultHealthAttempts.
//
// Panics if n <= 0.
func WithHealthAttempts(n int) Option {
	requirePositive("health attempts", n)
	return func(c *supervisorConfig) {
		c.HealthAttempts = n
	}
}

// WithHealthInterval sets the delay between health probe attempts.
//
// Default: DefaultHealthInterval.
//
// Panics if d <= 0.
func WithHealthInterval(d time.Duration) Option {
	requirePositive("health interval", d)
	return func(c *supervisorConfig) {
		c.HealthInterval = d
	}
}

// WithStopTimeout sets the maximum time Terminate waits for the sidecar
// to exit after being signaled.
//
// Default: DefaultStopTimeout.
//
// Panics if d <= 0.
func WithStopTimeout(d time.Duration) Option {
	requirePositive("stop timeout", d)
	return func(c *supervisorConfig) {
		c.StopTimeout = d
	}
}

// WithStderrCapture redirects the sidecar's stderr into
// "<process name>-stderr.log" in the data directory, truncating any
// previous run's file. Without this option the child's stderr is
// discarded.
func WithStderrCapture() Option {
	return func(c *supervisorConfig) {
		c.CaptureStderr = true
	}
}

// WithOnReady sets the callback invoked with the announced port once the
// sidecar accepts connections. The callback runs on the Start goroutine,
// exactly once, and never concurrently with the fatal-failure path. An
// error from the callback is logged but does not fail Start: a broken
// presentation surface does not unseat a healthy backend.
func WithOnReady(fn func(port uint16) error) Option {
	return func(c *supervisorConfig) {
		c.OnReady = fn
	}
}
