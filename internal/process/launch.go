package process

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/almready/sidecar/internal/sentinel"
)

// ErrEmptyBinary is returned when Launch is called with an empty binary path.
const ErrEmptyBinary = sentinel.Error("binary path must not be empty")

// ErrEmptyDataDir is returned when Launch is called with an empty data directory.
const ErrEmptyDataDir = sentinel.Error("data directory must not be empty")

// ErrEmptyName is returned when Launch is called with an empty process name.
const ErrEmptyName = sentinel.Error("process name must not be empty")

// Config holds the configuration for launching the sidecar process.
type Config struct {
	Binary  string   // Path to the sidecar executable
	DataDir string   // Working directory; also passed to the child via env
	Env     []string // Extra KEY=VALUE entries appended to the parent environment
	Name    string   // Process name for logging (e.g., "almready-backend")

	// Stderr receives the child's standard error. A nil value discards it
	// (the sidecar's server logs its own noise there). Launch takes
	// ownership on success; the file is closed when the handle is stopped.
	Stderr *os.File

	// Logger (optional, defaults to slog.Default())
	Logger *slog.Logger
}

// validate checks that all required Config fields are set.
func (c Config) validate() error {
	var errs []error

	if c.Binary == "" {
		errs = append(errs, ErrEmptyBinary)
	}
	if c.DataDir == "" {
		errs = append(errs, ErrEmptyDataDir)
	}
	if c.Name == "" {
		errs = append(errs, ErrEmptyName)
	}

	return errors.Join(errs...)
}

// Launch starts the sidecar process with stdout captured as a readable
// stream and returns the process handle plus that stream. The caller owns
// both: the stream feeds the port handshake reader, and the handle must
// eventually be stopped so the child is reaped.
//
// Stdout is wired through an os.Pipe rather than cmd.StdoutPipe. The
// cmd.Wait goroutine starts immediately after launch, and StdoutPipe's
// contract forbids calling Wait while pipe reads are outstanding; a plain
// pipe keeps the two independent. The parent's write end is closed right
// after start, so the reader sees EOF exactly when the child exits or
// closes its stdout.
//
// Exactly one goroutine calling cmd.Wait is started per launched process;
// its result is consumed once by Handle.Stop. A second Wait on the same
// process is undefined behavior, so the handle is the only reaper.
func Launch(cfg Config) (*Handle, io.ReadCloser, error) {
	if err := cfg.validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid launch config: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, nil, fmt.Errorf("create stdout pipe: %w", err)
	}

	cmd := exec.Command(cfg.Binary)
	cmd.Dir = cfg.DataDir
	cmd.Env = append(os.Environ(), cfg.Env...)
	cmd.Stdout = w
	cmd.Stderr = cfg.Stderr // nil discards
	configureSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		if cfg.Stderr != nil {
			_ = cfg.Stderr.Close()
		}
		return nil, nil, fmt.Errorf("start %s process: %w", cfg.Name, err)
	}

	// The child holds its own duplicate of the write end; closing the
	// parent's copy is what turns child exit into EOF on the read end.
	_ = w.Close()

	// done (buffered 1) receives the Wait result, consumed once by Stop.
	// exited is a broadcast close readable by any number of goroutines
	// (e.g., the health probe's early-abort check).
	done := make(chan error, 1)
	exited := make(chan struct{})
	go func() {
		done <- cmd.Wait()
		close(exited)
	}()

	log.Debug("sidecar process started", "process", cfg.Name, "pid", cmd.Process.Pid)

	h := &Handle{
		cmd:      cmd,
		pid:      cmd.Process.Pid,
		waitDone: done,
		exited:   exited,
		name:     cfg.Name,
		stderr:   cfg.Stderr,
		log:      log,
	}
	return h, r, nil
}

// OpenStderrLog creates the stderr log file for a process in the data
// directory, named "<name>-stderr.log". The returned file is handed to
// Config.Stderr; the handle closes it during Stop.
func OpenStderrLog(dataDir, name string) (*os.File, error) {
	path := filepath.Join(dataDir, name+"-stderr.log")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create stderr log %s: %w", path, err)
	}
	return f, nil
}
