package sidecar

import "github.com/almready/sidecar/internal/core"

// supervisorConfig holds configuration for a Supervisor. This unexported
// type wraps core.Config via embedding, keeping internal/core types out
// of the public API signature while avoiding field-by-field duplication.
type supervisorConfig struct {
	core.Config
}

// toCoreConfig returns the embedded core.Config.
func (c supervisorConfig) toCoreConfig() core.Config {
	return c.Config
}
