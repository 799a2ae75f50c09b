package embed

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/frostyard/macbundle/internal/bundle"
	"github.com/frostyard/macbundle/internal/dylib"
)

// Problem kinds reported by Verify.
const (
	ProblemAbsolute = "absolute reference to embedded library"
	ProblemMissing  = "dependency not embedded"
)

// Finding is one load path Verify objects to.
type Finding struct {
	Binary     string
	Dependency string
	Problem    string
}

// Verify inspects the patch target and the library directory without
// modifying anything and reports every load path that still points under
// prefix.
func Verify(fsys afero.Fs, layout bundle.Layout, inspector dylib.Inspector, prefix string) ([]Finding, error) {
	target, err := patchTarget(fsys, layout)
	if err != nil {
		return nil, err
	}
	binaries := []string{target}
	if _, err := fsys.Stat(layout.LibraryDir()); err == nil {
		libs, err := libraryFiles(fsys, layout.LibraryDir())
		if err != nil {
			return nil, err
		}
		binaries = append(binaries, libs...)
	}

	prefix = strings.TrimSuffix(prefix, "/") + "/"
	var findings []Finding
	for _, binary := range binaries {
		deps, err := inspector.Dependencies(binary)
		if err != nil {
			return findings, err
		}
		for _, dep := range deps {
			if !strings.HasPrefix(dep, prefix) {
				continue
			}
			problem := ProblemMissing
			if ok, _ := afero.Exists(fsys, filepath.Join(layout.LibraryDir(), bundle.Base(dep))); ok {
				problem = ProblemAbsolute
			}
			findings = append(findings, Finding{Binary: binary, Dependency: dep, Problem: problem})
		}
	}
	return findings, nil
}
