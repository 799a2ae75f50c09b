package prereq

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/frostyard/macbundle/internal/runner"
)

type requirement struct {
	binary  string
	pkgHint string
}

var requirements = []requirement{
	{"otool", "Xcode command line tools (xcode-select --install)"},
	{"install_name_tool", "Xcode command line tools (xcode-select --install)"},
}

// Check verifies all required binaries are available.
// Returns a list of errors for each missing binary.
func Check(r runner.Runner) []error {
	var errs []error
	for _, req := range requirements {
		if _, err := r.LookPath(req.binary); err != nil {
			errs = append(errs, fmt.Errorf("%s not found, install the %s", req.binary, req.pkgHint))
		}
	}
	return errs
}

// Writable reports whether the current user may create files in dir.
func Writable(dir string) error {
	if err := unix.Access(dir, unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("%s is not writable: %w", dir, err)
	}
	return nil
}
