package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingInput indicates the bundle or a required external directory is absent.
	ErrMissingInput = errors.New("missing input")

	// ErrInspection indicates the dependency list of a binary could not be obtained.
	ErrInspection = errors.New("inspection failed")

	// ErrPatch indicates a load-path rewrite returned failure.
	ErrPatch = errors.New("patch failed")

	// ErrCopy indicates a file copy could not complete.
	ErrCopy = errors.New("copy failed")

	// ErrVersionResolution indicates no qualifying runtime version directory exists.
	ErrVersionResolution = errors.New("no usable runtime version")
)

// Error wraps a failure with the step and path it happened on.
type Error struct {
	Op   string // step that failed, e.g. "change reference"
	Path string // file the step was operating on
	Kind error  // one of the sentinels above
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", e.Op, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", msg, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", msg, e.Kind)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New returns an *Error of the given kind.
func New(kind error, op, path string, err error) error {
	return &Error{Op: op, Path: path, Kind: kind, Err: err}
}
