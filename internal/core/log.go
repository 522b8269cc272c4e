package core

import (
	"log/slog"
	"sync/atomic"
)

// logger is the package-level logger, stored as an atomic pointer so reads
// and writes are data-race-free. Named "logger" instead of "log" to avoid
// shadowing the stdlib "log" package.
//
// A nil value means no custom logger has been set; Logger() falls back to
// a cached default derived from slog.Default().
var logger atomic.Pointer[slog.Logger]

// defaultLogger caches the default-derived logger (slog.Default() with the
// sidecar component attribute) so it is not re-created on every Logger()
// call. If slog.SetDefault() changes after the first Logger() call, the
// cache will not reflect it; calling SetLogger(nil) clears the cache so
// the next Logger() call re-derives.
var defaultLogger atomic.Pointer[slog.Logger]

// Logger returns the current package-level logger. If no custom logger has
// been set via SetLogger, it returns a cached logger derived from
// slog.Default() with the sidecar component attribute. Safe to call from
// multiple goroutines.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := newDefaultLogger()
	// CompareAndSwap avoids overwriting a concurrently cached value; if
	// another goroutine stored one first, use theirs.
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	if l2 := defaultLogger.Load(); l2 != nil {
		return l2
	}
	// A concurrent SetLogger cleared the cache between the CAS and the
	// load; the locally created logger is still valid.
	return l
}

// newDefaultLogger creates the default logger with the sidecar component attribute.
func newDefaultLogger() *slog.Logger {
	return slog.Default().With("component", "sidecar")
}

// SetLogger replaces the package-level logger. If l is nil, the logger
// resets to the default: slog.Default() with the component attribute,
// re-derived on the next Logger() call and then cached.
//
// SetLogger is safe to call concurrently with other supervisor operations.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	// Clear the cached default so the next Logger() call re-derives it,
	// letting callers pick up slog.SetDefault() changes via SetLogger(nil).
	defaultLogger.Store(nil)
}
