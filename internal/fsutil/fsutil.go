// Package fsutil copies files and directory trees on an afero filesystem.
package fsutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// CopyFile copies src to dst, keeping src's permission bits. src is followed
// if it is a symlink.
func CopyFile(fsys afero.Fs, src, dst string) error {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	out, err := fsys.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// IsMetadata reports whether name is a Finder artifact: .DS_Store or an
// AppleDouble "._" file.
func IsMetadata(name string) bool {
	return name == ".DS_Store" || strings.HasPrefix(name, "._")
}

// CopyTree copies the directory src to dst. Symlinks are recreated rather
// than followed, and Finder metadata files are left out. It returns the
// number of regular files copied.
func CopyTree(ctx context.Context, fsys afero.Fs, src, dst string) (int, error) {
	files := 0
	err := afero.Walk(fsys, src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if IsMetadata(info.Name()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case info.IsDir():
			return fsys.MkdirAll(target, 0755)
		case info.Mode()&os.ModeSymlink != 0:
			return copySymlink(fsys, path, target)
		case info.Mode().IsRegular():
			if err := CopyFile(fsys, path, target); err != nil {
				return err
			}
			files++
			return nil
		default:
			// sockets, fifos and devices have no place in a bundle
			return nil
		}
	})
	return files, err
}

func copySymlink(fsys afero.Fs, path, target string) error {
	reader, ok := fsys.(afero.LinkReader)
	if !ok {
		return fmt.Errorf("copy symlink %s: filesystem cannot read links", path)
	}
	linker, ok := fsys.(afero.Linker)
	if !ok {
		return fmt.Errorf("copy symlink %s: filesystem cannot create links", path)
	}
	link, err := reader.ReadlinkIfPossible(path)
	if err != nil {
		return err
	}
	if err := fsys.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return linker.SymlinkIfPossible(link, target)
}
