package runner

import (
	"os/exec"

	"github.com/rs/zerolog/log"
)

// Runner executes system commands. Mockable for tests.
type Runner interface {
	// Run executes a command to completion, returning combined output and error.
	// A non-zero exit status is reported as an *exec.ExitError.
	Run(name string, args ...string) ([]byte, error)
	// LookPath checks if a binary is in PATH.
	LookPath(name string) (string, error)
}

// SystemRunner executes real system commands.
type SystemRunner struct{}

func (r *SystemRunner) Run(name string, args ...string) ([]byte, error) {
	log.Trace().Str("command", name).Strs("args", args).Msg("Executing command")
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		log.Debug().Err(err).Str("command", name).Strs("args", args).Msg("Command failed")
	}
	return out, err
}

func (r *SystemRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
