package dylib

import (
	"bufio"
	"bytes"
	"regexp"

	"github.com/frostyard/macbundle/internal/errs"
	"github.com/frostyard/macbundle/internal/runner"
)

// Inspector lists the load paths a binary declares, in load-command order.
// For a dynamic library the first entry is its own install name.
type Inspector interface {
	Dependencies(path string) ([]string, error)
}

// otoolLine matches "\t/path/to/libfoo.dylib (compatibility version 1.0.0, current version 1.2.0)".
var otoolLine = regexp.MustCompile(`^\s+(\S.*?) \(.*\)\s*$`)

// OtoolInspector lists dependencies with `otool -L`.
type OtoolInspector struct {
	Runner runner.Runner
}

func (i *OtoolInspector) Dependencies(path string) ([]string, error) {
	out, err := i.Runner.Run("otool", "-L", path)
	if err != nil {
		return nil, errs.New(errs.ErrInspection, "otool -L", path, fmtOutput(err, out))
	}
	return ParseOtool(out), nil
}

// ParseOtool extracts load paths from `otool -L` output. Header lines are
// skipped and repeated paths (one set per fat slice) are reported once.
func ParseOtool(out []byte) []string {
	var deps []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		m := otoolLine.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		deps = append(deps, m[1])
	}
	return deps
}
