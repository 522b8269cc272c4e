// Package probe confirms that the sidecar accepts TCP connections on its
// announced port, retrying on a fixed budget.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"
)

// DefaultDialTimeout is the per-attempt timeout for the TCP dial. 1 second
// is generous for a localhost connection; attempts that fail because the
// sidecar is not yet listening return immediately with connection refused,
// so this only guards against pathological cases (SYN sent, no SYN-ACK).
const DefaultDialTimeout = time.Second

// Config holds the health probe parameters. Attempts and Interval are an
// immutable budget, not adaptive state: the probe tries exactly Attempts
// connections with Interval between them and reports the outcome.
type Config struct {
	Port     uint16        // Sidecar port to dial on 127.0.0.1
	Attempts int           // Fixed attempt budget
	Interval time.Duration // Delay between attempts

	// DialTimeout bounds each individual dial (defaults to DefaultDialTimeout).
	DialTimeout time.Duration

	// Exited, if non-nil, aborts the probe when closed (the sidecar died;
	// burning the remaining budget would only delay the failure report).
	Exited <-chan struct{}

	// Logger (optional, defaults to slog.Default())
	Logger *slog.Logger
}

// validate checks that the probe parameters are usable.
func (c Config) validate() error {
	var errs []error

	if c.Port == 0 {
		errs = append(errs, errors.New("port must not be zero"))
	}
	if c.Attempts <= 0 {
		errs = append(errs, errors.New("attempt budget must be positive"))
	}
	if c.Interval <= 0 {
		errs = append(errs, errors.New("interval must be positive"))
	}

	return errors.Join(errs...)
}

// Wait dials 127.0.0.1:<port> until one attempt connects or the budget is
// exhausted. A successful connection is the whole readiness signal; no
// bytes are exchanged. Success on the final attempt still counts. The
// boolean result is the only outcome channel: budget exhaustion, sidecar
// exit, and context cancellation all report false, and the caller decides
// how to escalate. The error return is reserved for invalid configuration.
func Wait(ctx context.Context, cfg Config) (bool, error) {
	if err := cfg.validate(); err != nil {
		return false, fmt.Errorf("invalid probe config: %w", err)
	}

	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = DefaultDialTimeout
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(int(cfg.Port)))
	dialer := &net.Dialer{Timeout: dialTimeout}

	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		select {
		case <-cfg.Exited:
			log.Debug("probe aborted, sidecar exited", "port", cfg.Port, "attempt", attempt)
			return false, nil
		case <-ctx.Done():
			return false, nil
		default:
		}

		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			_ = conn.Close() // best-effort close of the readiness connection
			log.Debug("probe succeeded", "port", cfg.Port, "attempt", attempt)
			return true, nil
		}
		log.Debug("probe attempt failed", "port", cfg.Port, "attempt", attempt, "error", err)

		if attempt == cfg.Attempts {
			break
		}
		if !sleep(ctx, cfg.Interval, cfg.Exited) {
			return false, nil
		}
	}

	log.Debug("probe budget exhausted", "port", cfg.Port, "attempts", cfg.Attempts)
	return false, nil
}

// sleep waits for the inter-attempt interval. It returns false if the
// context was canceled or the sidecar exited while waiting.
func sleep(ctx context.Context, d time.Duration, exited <-chan struct{}) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	case <-exited:
		return false
	}
}
