package process

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

// makeSignalExitError runs a shell that kills itself with the given signal
// and returns the resulting *exec.ExitError.
func makeSignalExitError(t *testing.T, sig syscall.Signal) error {
	t.Helper()

	cmd := exec.Command("/bin/sh", "-c", fmt.Sprintf("kill -%d $$", int(sig)))
	err := cmd.Run()
	if err == nil {
		t.Fatalf("expected signal exit error for signal %d, got nil", sig)
	}
	return err
}

func TestExpectSignalExit(t *testing.T) {
	t.Parallel()

	type testCase struct {
		err     error
		signal  syscall.Signal
		wantErr bool
	}

	tests := map[string]testCase{
		"nil error returns nil": {
			wantErr: false,
		},
		"SIGTERM exit is expected": {
			signal:  syscall.SIGTERM,
			wantErr: false,
		},
		"SIGKILL exit is expected": {
			signal:  syscall.SIGKILL,
			wantErr: false,
		},
		"other signal is unexpected": {
			signal:  syscall.SIGINT,
			wantErr: true,
		},
		"non-ExitError is unexpected": {
			err:     errors.New("some other error"),
			wantErr: true,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			inputErr := tc.err
			if inputErr == nil && tc.signal != 0 {
				inputErr = makeSignalExitError(t, tc.signal)
			}

			got := expectSignalExit(inputErr, "test-sidecar")

			if tc.wantErr && got == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && got != nil {
				t.Fatalf("expected nil, got %v", got)
			}
		})
	}
}

func TestDrainDone(t *testing.T) {
	t.Parallel()

	t.Run("receives value", func(t *testing.T) {
		t.Parallel()

		done := make(chan error, 1)
		want := errors.New("process crashed")
		done <- want

		ok, err := drainDone(done, time.Second)
		if !ok {
			t.Fatal("expected ok=true when channel has a value")
		}
		if !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	})

	t.Run("times out on empty channel", func(t *testing.T) {
		t.Parallel()

		done := make(chan error) // never written to

		ok, err := drainDone(done, 10*time.Millisecond)
		if ok {
			t.Fatal("expected ok=false when timeout elapses")
		}
		if err != nil {
			t.Fatalf("expected nil error on timeout, got %v", err)
		}
	})
}

func TestLaunch_ConfigValidation(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		cfg     Config
		wantErr error
	}{
		"missing binary": {
			cfg:     Config{DataDir: "/tmp", Name: "backend"},
			wantErr: ErrEmptyBinary,
		},
		"missing data dir": {
			cfg:     Config{Binary: "/bin/true", Name: "backend"},
			wantErr: ErrEmptyDataDir,
		},
		"missing name": {
			cfg:     Config{Binary: "/bin/true", DataDir: "/tmp"},
			wantErr: ErrEmptyName,
		},
	}

	for name, tc := range tests {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, _, err := Launch(tc.cfg)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Launch() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestLaunch_MissingBinary(t *testing.T) {
	t.Parallel()

	_, _, err := Launch(Config{
		Binary:  "/nonexistent/backend-binary",
		DataDir: t.TempDir(),
		Name:    "backend",
	})
	if err == nil {
		t.Fatal("expected launch of a missing binary to fail")
	}
}

// writeScript writes an executable shell script into dir and returns its path.
func writeScript(t *testing.T, dir, body string) string {
	t.Helper()

	path := filepath.Join(dir, "fake-backend.sh")
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestLaunch_ScriptOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := writeScript(t, dir, "#!/bin/sh\necho line-one\necho \"env=$TEST_VALUE\"\n")

	h, stdout, err := Launch(Config{
		Binary:  script,
		DataDir: dir,
		Env:     []string{"TEST_VALUE=42"},
		Name:    "backend",
	})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	defer stdout.Close()

	sc := bufio.NewScanner(stdout)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if sc.Err() != nil {
		t.Fatalf("scan stdout: %v", sc.Err())
	}
	if len(lines) != 2 || lines[0] != "line-one" || lines[1] != "env=42" {
		t.Fatalf("unexpected stdout lines: %q", lines)
	}

	// The script has exited; the exited channel must close and Stop must
	// succeed as a reap of an already-dead process.
	select {
	case <-h.Exited():
	case <-time.After(5 * time.Second):
		t.Fatal("exited channel did not close after child exit")
	}
	if err := h.Stop(time.Second); err != nil {
		t.Fatalf("Stop() after natural exit = %v", err)
	}
}

func TestHandle_StopKillsLongRunningProcess(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	script := writeScript(t, dir, "#!/bin/sh\nsleep 60\n")

	h, stdout, err := Launch(Config{
		Binary:  script,
		DataDir: dir,
		Name:    "backend",
	})
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	defer stdout.Close()

	if err := h.Stop(5 * time.Second); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	select {
	case <-h.Exited():
	case <-time.After(time.Second):
		t.Fatal("process not reaped after Stop")
	}
}

func TestSlot(t *testing.T) {
	t.Parallel()

	t.Run("take on empty slot returns nil", func(t *testing.T) {
		t.Parallel()

		var s Slot
		if h := s.Take(); h != nil {
			t.Fatalf("Take() on empty slot = %v, want nil", h)
		}
	})

	t.Run("put then take returns the handle once", func(t *testing.T) {
		t.Parallel()

		var s Slot
		h := &Handle{pid: 1234}
		if !s.Put(h) {
			t.Fatal("Put() on empty slot = false, want true")
		}
		if !s.Held() {
			t.Fatal("Held() = false after Put")
		}
		if got := s.Take(); got != h {
			t.Fatalf("Take() = %v, want the stored handle", got)
		}
		if got := s.Take(); got != nil {
			t.Fatalf("second Take() = %v, want nil", got)
		}
		if s.Held() {
			t.Fatal("Held() = true after Take")
		}
	})

	t.Run("put on occupied slot is refused", func(t *testing.T) {
		t.Parallel()

		var s Slot
		if !s.Put(&Handle{pid: 1}) {
			t.Fatal("first Put() = false, want true")
		}
		if s.Put(&Handle{pid: 2}) {
			t.Fatal("second Put() = true, want false")
		}
	})
}
