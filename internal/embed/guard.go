package embed

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
)

// withWritable runs fn with owner write permission on path and restores the
// original mode afterwards, whether fn fails, succeeds or panics.
func withWritable(fsys afero.Fs, path string, fn func() error) (err error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return err
	}
	mode := info.Mode().Perm()
	if mode&0o200 == 0 {
		if err := fsys.Chmod(path, mode|0o200); err != nil {
			return fmt.Errorf("make %s writable: %w", path, err)
		}
		defer func() {
			if cerr := fsys.Chmod(path, mode); cerr != nil {
				err = errors.Join(err, fmt.Errorf("restore mode of %s: %w", path, cerr))
			}
		}()
	}
	return fn()
}
