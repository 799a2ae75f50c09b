// Package embed copies a bundle's non-system dynamic libraries into the
// bundle and rewrites every load reference to an @executable_path form.
//
// A run walks the dependency graph from the patch target with an explicit
// stack. Library basenames are the visited set: a basename is copied and
// walked at most once per run, which is also what keeps cycles finite.
// Explicitly listed extra libraries are seeded into the same walk, and a
// final sweep fixes any absolute reference to a library that ended up
// embedded. Mutations are not rolled back when a step fails.
package embed

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/frostyard/macbundle/internal/bundle"
	"github.com/frostyard/macbundle/internal/dylib"
	"github.com/frostyard/macbundle/internal/errs"
	"github.com/frostyard/macbundle/internal/fsutil"
)

// Options configures an Embedder.
type Options struct {
	// Prefix marks embeddable dependencies, e.g. /opt/homebrew.
	Prefix string
	// ExtraLibs are copied in even if nothing links them.
	ExtraLibs []string
}

// Embedder makes one bundle self-contained. It is not safe for concurrent
// use, and callers must not run two Embedders against the same bundle.
type Embedder struct {
	layout    bundle.Layout
	fs        afero.Fs
	inspector dylib.Inspector
	patcher   dylib.Patcher
	prefix    string
	extra     []string
	log       zerolog.Logger
}

// Report summarizes one Embed call.
type Report struct {
	Target  string   // binary the walk started from
	Anchor  string   // library directory relative to Target's directory
	Copied  []string // basenames copied into the library directory
	Adopted []string // basenames already present and walked without copying
	Patched int      // load paths rewritten during the walk
	Fixed   int      // load paths rewritten by the final sweep
}

// New returns an Embedder for layout. The bundle root must exist on fsys.
func New(layout bundle.Layout, fsys afero.Fs, inspector dylib.Inspector, patcher dylib.Patcher, opts Options, log zerolog.Logger) (*Embedder, error) {
	if _, err := fsys.Stat(layout.Root); err != nil {
		return nil, errs.New(errs.ErrMissingInput, "open bundle", layout.Root, err)
	}
	if opts.Prefix == "" {
		return nil, errors.New("prefix filter must not be empty")
	}
	prefix := strings.TrimSuffix(opts.Prefix, "/") + "/"

	return &Embedder{
		layout:    layout,
		fs:        fsys,
		inspector: inspector,
		patcher:   patcher,
		prefix:    prefix,
		extra:     opts.ExtraLibs,
		log:       log,
	}, nil
}

// PatchTarget returns the executable whose dependencies are embedded: the
// "-bin" inner executable when the bundle has one, else the main executable.
func (e *Embedder) PatchTarget() (string, error) {
	return patchTarget(e.fs, e.layout)
}

func patchTarget(fsys afero.Fs, layout bundle.Layout) (string, error) {
	split := layout.SplitExecutablePath()
	if info, err := fsys.Stat(split); err == nil && info.Mode().IsRegular() {
		return split, nil
	}
	exe := layout.ExecutablePath()
	if _, err := fsys.Stat(exe); err != nil {
		return "", errs.New(errs.ErrMissingInput, "find executable", exe, err)
	}
	return exe, nil
}

// Embed runs the walk, the extra-library pass and the fixer sweep, in that
// order. It stops at the first failure; ctx is checked between binaries.
func (e *Embedder) Embed(ctx context.Context) (*Report, error) {
	target, err := e.PatchTarget()
	if err != nil {
		return nil, err
	}
	anchor, err := e.layout.Anchor(filepath.Dir(target))
	if err != nil {
		return nil, err
	}
	if err := e.fs.MkdirAll(e.layout.LibraryDir(), 0755); err != nil {
		return nil, errs.New(errs.ErrCopy, "create library directory", e.layout.LibraryDir(), err)
	}

	r := &run{
		Embedder: e,
		anchor:   anchor,
		embedded: make(map[string]string),
		report:   &Report{Target: target, Anchor: anchor},
	}

	e.log.Info().Str("target", target).Str("anchor", anchor).Msg("Embedding libraries")
	if err := r.copyLibs(ctx, target); err != nil {
		return r.report, err
	}
	if err := r.copyExtraLibs(ctx); err != nil {
		return r.report, err
	}
	if err := r.fixSelfReferences(ctx, target); err != nil {
		return r.report, err
	}
	e.log.Info().
		Int("copied", len(r.report.Copied)).
		Int("patched", r.report.Patched).
		Int("fixed", r.report.Fixed).
		Msg("Libraries embedded")
	return r.report, nil
}

// run is the state of a single Embed call.
type run struct {
	*Embedder
	anchor string
	// embedded maps a basename to the source path it was first seen at.
	embedded map[string]string
	report   *Report
}

func (r *run) libPath(base string) string {
	return filepath.Join(r.layout.LibraryDir(), base)
}

func (r *run) dependencies(binary string) ([]string, error) {
	deps, err := r.inspector.Dependencies(binary)
	if err != nil {
		if errors.Is(err, errs.ErrInspection) {
			return nil, err
		}
		return nil, errs.New(errs.ErrInspection, "list dependencies", binary, err)
	}
	return deps, nil
}

// rewrite points dep inside binary at the embedded copy. A dependency with
// the binary's own basename is its install name.
func (r *run) rewrite(binary, dep string) error {
	base := bundle.Base(dep)
	target := bundle.LoadPath(r.anchor, base)
	self := base == filepath.Base(binary)

	err := withWritable(r.fs, binary, func() error {
		if self {
			return r.patcher.SetID(binary, target)
		}
		return r.patcher.Change(binary, dep, target)
	})
	if err != nil {
		if errors.Is(err, errs.ErrPatch) {
			return err
		}
		return errs.New(errs.ErrPatch, "rewrite "+dep, binary, err)
	}
	r.log.Debug().Str("binary", binary).Str("from", dep).Str("to", target).Bool("id", self).Msg("Rewrote load path")
	return nil
}

// claim records base as embedded from src, copying src into the library
// directory unless a file is already there. It reports whether the caller
// should walk the embedded file.
func (r *run) claim(base, src string) (bool, error) {
	if first, ok := r.embedded[base]; ok {
		if first != src {
			r.log.Debug().Str("library", base).Str("kept", first).Str("skipped", src).Msg("Basename already embedded")
		}
		return false, nil
	}
	r.embedded[base] = src

	dest := r.libPath(base)
	_, err := r.fs.Stat(dest)
	switch {
	case err == nil:
		r.report.Adopted = append(r.report.Adopted, base)
		r.log.Debug().Str("library", base).Msg("Already in bundle")
	case errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err):
		if err := fsutil.CopyFile(r.fs, src, dest); err != nil {
			return false, errs.New(errs.ErrCopy, "copy library", src, err)
		}
		r.report.Copied = append(r.report.Copied, base)
		r.log.Info().Str("library", base).Str("from", src).Msg("Copied library")
	default:
		return false, errs.New(errs.ErrCopy, "stat library", dest, err)
	}
	return true, nil
}
