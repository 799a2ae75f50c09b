// Package gccjit embeds the compiler runtime that native compilation loads
// at run time: the whole lib/<toolchain>/<version> directory of an external
// GCC installation is copied under the bundle's library directory. The
// runtime finds its plugins by scanning that directory, so nothing inside
// it is relinked.
package gccjit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/frostyard/macbundle/internal/bundle"
	"github.com/frostyard/macbundle/internal/errs"
	"github.com/frostyard/macbundle/internal/fsutil"
)

// Options locates the runtime installation.
type Options struct {
	Root      string // installation root, e.g. /opt/homebrew/opt/gcc
	Toolchain string // directory under lib/, e.g. gcc
	Plugin    string // file a version directory must contain to be usable
}

// Result describes one Embed call.
type Result struct {
	Version string
	Source  string
	Dest    string
	Files   int
	// AlreadyEmbedded is set when the bundle already had the plugin and
	// nothing was copied.
	AlreadyEmbedded bool
}

type Embedder struct {
	layout bundle.Layout
	fs     afero.Fs
	opts   Options
	log    zerolog.Logger
}

// New returns an Embedder for layout. The bundle root must exist on fsys.
func New(layout bundle.Layout, fsys afero.Fs, opts Options, log zerolog.Logger) (*Embedder, error) {
	if _, err := fsys.Stat(layout.Root); err != nil {
		return nil, errs.New(errs.ErrMissingInput, "open bundle", layout.Root, err)
	}
	if opts.Toolchain == "" || opts.Plugin == "" {
		return nil, errors.New("runtime toolchain and plugin must be set")
	}
	return &Embedder{layout: layout, fs: fsys, opts: opts, log: log}, nil
}

// SourceDir returns lib/<toolchain> of the installation.
func (e *Embedder) SourceDir() string {
	return filepath.Join(e.opts.Root, "lib", e.opts.Toolchain)
}

// DestDir returns where version is placed inside the bundle.
func (e *Embedder) DestDir(version string) string {
	return filepath.Join(e.layout.LibraryDir(), e.opts.Toolchain, version)
}

// Embed copies the newest usable version directory into the bundle, or
// does nothing if the bundle already holds the plugin for that version.
func (e *Embedder) Embed(ctx context.Context) (*Result, error) {
	src := e.SourceDir()
	version, err := ResolveVersion(e.fs, src, e.opts.Plugin)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Version: version,
		Source:  filepath.Join(src, version),
		Dest:    e.DestDir(version),
	}

	if ok, _ := afero.Exists(e.fs, filepath.Join(res.Dest, e.opts.Plugin)); ok {
		e.log.Info().Str("version", version).Str("dest", res.Dest).Msg("Runtime already embedded")
		res.AlreadyEmbedded = true
		return res, nil
	}

	e.log.Info().Str("version", version).Str("from", res.Source).Str("to", res.Dest).Msg("Embedding runtime")
	n, err := e.install(ctx, res.Source, res.Dest)
	res.Files = n
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		return res, errs.New(errs.ErrCopy, "copy runtime", res.Source, err)
	}
	e.log.Debug().Int("files", n).Msg("Runtime copied")
	return res, nil
}

// install copies src into a hidden sibling of dest and renames it into
// place, so dest only ever holds a complete tree. A dest without the plugin
// is an earlier partial copy and is replaced.
func (e *Embedder) install(ctx context.Context, src, dest string) (int, error) {
	parent := filepath.Dir(dest)
	if err := e.fs.MkdirAll(parent, 0755); err != nil {
		return 0, err
	}
	tmp, err := afero.TempDir(e.fs, parent, "."+filepath.Base(dest)+"-")
	if err != nil {
		return 0, err
	}
	n, err := fsutil.CopyTree(ctx, e.fs, src, tmp)
	if err == nil {
		err = e.fs.Chmod(tmp, 0755)
	}
	if err == nil {
		err = e.fs.RemoveAll(dest)
	}
	if err == nil {
		err = e.fs.Rename(tmp, dest)
	}
	if err != nil {
		if rerr := e.fs.RemoveAll(tmp); rerr != nil {
			e.log.Warn().Err(rerr).Str("dir", tmp).Msg("Could not remove partial runtime copy")
		}
		return n, err
	}
	return n, nil
}

// ResolveVersion returns the numerically highest version directory under
// dir that contains plugin. Names that are not integers are ignored.
func ResolveVersion(fsys afero.Fs, dir, plugin string) (string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errs.New(errs.ErrMissingInput, "read runtime installation", dir, err)
		}
		return "", errs.New(errs.ErrVersionResolution, "read runtime installation", dir, err)
	}

	best, bestName := -1, ""
	for _, entry := range entries {
		n, err := strconv.Atoi(entry.Name())
		if err != nil || n < 0 {
			continue
		}
		if ok, _ := afero.Exists(fsys, filepath.Join(dir, entry.Name(), plugin)); !ok {
			continue
		}
		if n > best {
			best, bestName = n, entry.Name()
		}
	}
	if best < 0 {
		return "", errs.New(errs.ErrVersionResolution, "resolve runtime version", dir,
			fmt.Errorf("no numeric version directory contains %s", plugin))
	}
	return bestName, nil
}
