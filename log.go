package sidecar

import (
	"log/slog"

	"github.com/almready/sidecar/internal/core"
)

// SetLogger replaces the package-level logger used by the supervisor.
// This allows applications to integrate sidecar logging with their own
// logging infrastructure. The provided logger should already have any
// desired attributes; the supervisor will not add additional ones.
//
// If l is nil, the logger resets to the default: slog.Default() with a
// "component" attribute, re-derived on the next use and then cached.
// Call SetLogger(nil) after slog.SetDefault() to pick up changes.
//
// SetLogger is safe to call concurrently with supervisor operations, but
// a supervisor captures the logger when New runs, so call SetLogger
// first for it to take effect.
func SetLogger(l *slog.Logger) {
	core.SetLogger(l)
}
