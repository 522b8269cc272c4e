package sidecar

import "time"

// ConfigSnapshot holds a copy of supervisorConfig fields for test
// assertions. Exported only via export_test.go so that the _test package
// can verify option closures actually mutate the config without
// accessing internals.
type ConfigSnapshot struct {
	Binary         string
	DataDir        string
	EnvPrefix      string
	CORSOrigins    []string
	ProcessName    string
	HealthAttempts int
	HealthInterval time.Duration
	StopTimeout    time.Duration
	CaptureStderr  bool
	HasOnReady     bool
}

// ApplyOptionsForTesting creates a default supervisorConfig, applies the
// given options, and returns a ConfigSnapshot of the result. This tests
// the option closures directly without constructing a supervisor.
func ApplyOptionsForTesting(opts ...Option) ConfigSnapshot {
	cfg := defaultSupervisorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return ConfigSnapshot{
		Binary:         cfg.Binary,
		DataDir:        cfg.DataDir,
		EnvPrefix:      cfg.EnvPrefix,
		CORSOrigins:    cfg.CORSOrigins,
		ProcessName:    cfg.ProcessName,
		HealthAttempts: cfg.HealthAttempts,
		HealthInterval: cfg.HealthInterval,
		StopTimeout:    cfg.StopTimeout,
		CaptureStderr:  cfg.CaptureStderr,
		HasOnReady:     cfg.OnReady != nil,
	}
}
