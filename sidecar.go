package sidecar

import (
	"context"

	"github.com/almready/sidecar/internal/core"
)

// Compile-time interface satisfaction check.
var _ Supervisor = (*supervisorWrapper)(nil)

// supervisorWrapper wraps core.Supervisor to implement the Supervisor
// interface.
//
// The core.Supervisor is stored as a named (unexported) field rather than
// embedded to prevent callers from using type assertions to access
// internal methods that are not part of the public Supervisor interface.
type supervisorWrapper struct {
	sup *core.Supervisor
}

// Start wraps core.Supervisor.Start.
func (w *supervisorWrapper) Start(ctx context.Context) error {
	return w.sup.Start(ctx)
}

// Terminate wraps core.Supervisor.Terminate.
func (w *supervisorWrapper) Terminate() {
	w.sup.Terminate()
}

// State wraps core.Supervisor.State.
func (w *supervisorWrapper) State() State {
	return w.sup.State()
}

// Port wraps core.Supervisor.Port.
func (w *supervisorWrapper) Port() (uint16, bool) {
	return w.sup.Port()
}

// defaultSupervisorConfig returns a supervisorConfig populated with all
// default values. Both New and test helpers use this to avoid duplicating
// the default field assignments. Binary and DataDir have no defaults;
// they must be set through options.
func defaultSupervisorConfig() supervisorConfig {
	return supervisorConfig{core.Config{
		EnvPrefix:      DefaultEnvPrefix,
		ProcessName:    DefaultProcessName,
		HealthAttempts: DefaultHealthAttempts,
		HealthInterval: DefaultHealthInterval,
		StopTimeout:    DefaultStopTimeout,
	}}
}

// New creates a Supervisor with the given options. WithBinary and
// WithDataDir are required; everything else has a default. New performs
// no I/O — the data directory, lock, and process all materialize in
// Start.
//
// Panics if any option receives an invalid value. See individual With*
// functions for constraints.
//
//nolint:ireturn // Returns Supervisor interface by design for testability (mockable).
func New(opts ...Option) (Supervisor, error) {
	cfg := defaultSupervisorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	sup, err := core.New(cfg.toCoreConfig())
	if err != nil {
		return nil, err
	}
	return &supervisorWrapper{sup: sup}, nil
}
