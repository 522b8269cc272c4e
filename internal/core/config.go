package core

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config holds the supervisor configuration. The root package populates it
// from defaults and options; validate runs once in New.
type Config struct {
	// Required
	Binary  string // Path to the sidecar executable
	DataDir string // Persistent data directory, created if missing

	// EnvPrefix names the environment contract: the child receives
	// <EnvPrefix>_DATA_DIR and <EnvPrefix>_CORS_ORIGINS.
	EnvPrefix string

	// CORSOrigins is the list of origins the sidecar's server must honor,
	// joined with commas for the environment variable. May be empty.
	CORSOrigins []string

	// ProcessName is used for logging and for the stderr log file name.
	ProcessName string

	// HealthAttempts and HealthInterval form the fixed health probe
	// budget (attempts x interval is the readiness ceiling).
	HealthAttempts int
	HealthInterval time.Duration

	// StopTimeout bounds the graceful stop of the sidecar during
	// termination and fatal cleanup.
	StopTimeout time.Duration

	// CaptureStderr redirects the sidecar's stderr to a log file in the
	// data directory instead of discarding it.
	CaptureStderr bool

	// OnReady is invoked with the announced port once the sidecar accepts
	// connections. An error from the callback is logged, not escalated:
	// a broken presentation surface does not unseat a healthy backend.
	OnReady func(port uint16) error

	// Exit is called to terminate the whole supervising process after a
	// fatal failure (handshake failure, health timeout). Defaults to
	// os.Exit. Tests replace it to observe the escalation.
	Exit func(code int)

	// Logger (optional, defaults to the package logger)
	Logger *slog.Logger
}

// validate reports every missing or invalid required field at once.
func (c Config) validate() error {
	var errs []error

	if c.Binary == "" {
		errs = append(errs, errors.New("binary path must not be empty"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data dir must not be empty"))
	}
	if c.EnvPrefix == "" {
		errs = append(errs, errors.New("env prefix must not be empty"))
	}
	if c.ProcessName == "" {
		errs = append(errs, errors.New("process name must not be empty"))
	}
	if c.HealthAttempts <= 0 {
		errs = append(errs, errors.New("health attempts must be positive"))
	}
	if c.HealthInterval <= 0 {
		errs = append(errs, errors.New("health interval must be positive"))
	}
	if c.StopTimeout <= 0 {
		errs = append(errs, errors.New("stop timeout must be positive"))
	}

	return errors.Join(errs...)
}

// environment builds the env entries passed to the sidecar. The values are
// opaque strings as far as the supervisor is concerned; the sidecar's own
// configuration layer interprets them.
func (c Config) environment() []string {
	return []string{
		fmt.Sprintf("%s_DATA_DIR=%s", c.EnvPrefix, c.DataDir),
		fmt.Sprintf("%s_CORS_ORIGINS=%s", c.EnvPrefix, strings.Join(c.CORSOrigins, ",")),
	}
}
