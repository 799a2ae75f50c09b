package embed

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/frostyard/macbundle/internal/bundle"
	"github.com/frostyard/macbundle/internal/errs"
	"github.com/frostyard/macbundle/internal/fsutil"
)

// systemDirs hold libraries that are never replaced by an embedded copy,
// even when an embedded library shares their basename.
var systemDirs = []string{"/usr/lib/", "/System/Library/"}

// fixSelfReferences sweeps the patch target and every file in the library
// directory for absolute references to embedded libraries. The walk only
// rewrites paths under the prefix, so references that reached a library
// through another path, or files left behind by an earlier run, are closed
// here.
func (r *run) fixSelfReferences(ctx context.Context, target string) error {
	libs, err := libraryFiles(r.fs, r.layout.LibraryDir())
	if err != nil {
		return err
	}

	embedded := make(map[string]bool, len(r.embedded)+len(libs))
	for base := range r.embedded {
		embedded[base] = true
	}
	for _, lib := range libs {
		embedded[bundle.Base(lib)] = true
	}

	for _, binary := range append([]string{target}, libs...) {
		if err := ctx.Err(); err != nil {
			return err
		}
		deps, err := r.dependencies(binary)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			// A system library keeps its absolute path even if an embedded
			// library shares its basename: the OS copy is the one it means.
			if bundle.IsRelative(dep) || isSystem(dep) || !embedded[bundle.Base(dep)] {
				continue
			}
			if err := r.rewrite(binary, dep); err != nil {
				return err
			}
			r.report.Fixed++
		}
	}
	return nil
}

// libraryFiles lists regular files directly inside dir, in name order.
// Finder metadata is not a library and is left out.
func libraryFiles(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, errs.New(errs.ErrInspection, "list library directory", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.Mode().IsRegular() && !fsutil.IsMetadata(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func isSystem(path string) bool {
	for _, dir := range systemDirs {
		if strings.HasPrefix(path, dir) {
			return true
		}
	}
	return false
}
