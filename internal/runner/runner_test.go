package runner

import (
	"errors"
	"os/exec"
	"strings"
	"testing"
)

func TestSystemRunnerRun(t *testing.T) {
	r := &SystemRunner{}
	if _, err := r.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	out, err := r.Run("sh", "-c", "echo hello; echo oops >&2")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	got := string(out)
	if !strings.Contains(got, "hello") || !strings.Contains(got, "oops") {
		t.Errorf("combined output = %q, want stdout and stderr", got)
	}
}

func TestSystemRunnerExitStatus(t *testing.T) {
	r := &SystemRunner{}
	if _, err := r.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	_, err := r.Run("sh", "-c", "exit 3")
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *exec.ExitError, got %v", err)
	}
	if exitErr.ExitCode() != 3 {
		t.Errorf("ExitCode() = %d, want 3", exitErr.ExitCode())
	}
}
