// Package bundle holds the path and naming rules of a macOS application
// bundle: where the executable lives, where embedded libraries go, and the
// @executable_path form used to reference them.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/frostyard/macbundle/internal/errs"
)

const (
	executableDir = "Contents/MacOS"

	// ExecutablePathToken is the dyld token for the main executable's directory.
	ExecutablePathToken = "@executable_path"

	// splitSuffix marks the inner executable of a launcher/binary split.
	splitSuffix = "-bin"
)

// relativeTokens are load-path prefixes that already resolve inside the bundle.
var relativeTokens = []string{
	ExecutablePathToken + "/",
	"@loader_path/",
	"@rpath/",
}

// Layout is the immutable description of one bundle on disk.
type Layout struct {
	Root       string // path to X.app
	Executable string // file name under Contents/MacOS
	LibDir     string // library directory relative to Contents/MacOS
}

// New validates root and returns its layout. executable defaults to the
// bundle name without ".app"; libDir defaults to "lib".
func New(root, executable, libDir string) (Layout, error) {
	root = filepath.Clean(root)
	info, err := os.Stat(root)
	if err != nil {
		return Layout{}, errs.New(errs.ErrMissingInput, "open bundle", root, err)
	}
	if !info.IsDir() {
		return Layout{}, errs.New(errs.ErrMissingInput, "open bundle", root, fmt.Errorf("not a directory"))
	}
	if executable == "" {
		executable = strings.TrimSuffix(filepath.Base(root), ".app")
	}
	if libDir == "" {
		libDir = "lib"
	}
	if filepath.IsAbs(libDir) || strings.HasPrefix(filepath.Clean(libDir), "..") {
		return Layout{}, fmt.Errorf("library directory %q must stay under %s", libDir, executableDir)
	}
	return Layout{Root: root, Executable: executable, LibDir: filepath.Clean(libDir)}, nil
}

// ExecutableDir returns Contents/MacOS of the bundle.
func (l Layout) ExecutableDir() string {
	return filepath.Join(l.Root, executableDir)
}

// ExecutablePath returns the main executable.
func (l Layout) ExecutablePath() string {
	return filepath.Join(l.ExecutableDir(), l.Executable)
}

// LibraryDir returns the directory embedded libraries are copied into.
func (l Layout) LibraryDir() string {
	return filepath.Join(l.ExecutableDir(), l.LibDir)
}

// SplitExecutablePath returns the "-bin" inner executable path.
func (l Layout) SplitExecutablePath() string {
	return l.ExecutablePath() + splitSuffix
}

// Anchor returns the relative path from dir to the library directory.
func (l Layout) Anchor(dir string) (string, error) {
	rel, err := filepath.Rel(dir, l.LibraryDir())
	if err != nil {
		return "", fmt.Errorf("anchor from %s: %w", dir, err)
	}
	return filepath.ToSlash(rel), nil
}

// LoadPath returns the @executable_path reference for an embedded library.
func LoadPath(anchor, base string) string {
	if anchor == "" || anchor == "." {
		return ExecutablePathToken + "/" + base
	}
	return ExecutablePathToken + "/" + anchor + "/" + base
}

// IsRelative reports whether a load path already resolves inside the bundle.
func IsRelative(path string) bool {
	for _, token := range relativeTokens {
		if strings.HasPrefix(path, token) {
			return true
		}
	}
	return false
}

// Base returns the final component of a load path. Unlike filepath.Base it
// is not affected by the host path separator.
func Base(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
