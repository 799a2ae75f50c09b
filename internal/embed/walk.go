package embed

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/frostyard/macbundle/internal/bundle"
	"github.com/frostyard/macbundle/internal/errs"
	"github.com/frostyard/macbundle/internal/fsutil"
)

// copyLibs walks the dependency graph from start. Every prefixed dependency
// of a visited binary is rewritten; libraries not yet embedded are copied
// and pushed onto the stack.
func (r *run) copyLibs(ctx context.Context, start string) error {
	stack := []string{start}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		binary := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		deps, err := r.dependencies(binary)
		if err != nil {
			return err
		}

		self := bundle.Base(binary)
		for _, dep := range deps {
			if !strings.HasPrefix(dep, r.prefix) {
				continue
			}
			if err := r.rewrite(binary, dep); err != nil {
				return err
			}
			r.report.Patched++

			base := bundle.Base(dep)
			if base == self {
				continue
			}
			walk, err := r.claim(base, dep)
			if err != nil {
				return err
			}
			if walk {
				stack = append(stack, r.libPath(base))
			}
		}
	}
	return nil
}

// copyExtraLibs embeds libraries that are loaded at runtime rather than
// linked, then walks each one for its own dependencies.
func (r *run) copyExtraLibs(ctx context.Context) error {
	for _, src := range r.extra {
		if err := ctx.Err(); err != nil {
			return err
		}
		base := bundle.Base(src)
		dest := r.libPath(base)

		_, err := r.fs.Stat(dest)
		switch {
		case err == nil:
			r.log.Debug().Str("library", base).Msg("Extra library already in bundle")
		case errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err):
			if err := fsutil.CopyFile(r.fs, src, dest); err != nil {
				return errs.New(errs.ErrCopy, "copy extra library", src, err)
			}
			r.report.Copied = append(r.report.Copied, base)
			r.log.Info().Str("library", base).Str("from", src).Msg("Copied extra library")
		default:
			return errs.New(errs.ErrCopy, "stat extra library", dest, err)
		}
		if _, ok := r.embedded[base]; !ok {
			r.embedded[base] = src
		}

		// The id is rewritten even when the file was already present.
		if err := r.rewrite(dest, src); err != nil {
			return err
		}
		r.report.Patched++

		if err := r.copyLibs(ctx, dest); err != nil {
			return err
		}
	}
	return nil
}
