package dylib

import (
	"fmt"
	"strings"

	"github.com/frostyard/macbundle/internal/errs"
	"github.com/frostyard/macbundle/internal/runner"
)

// Patcher rewrites load paths inside a binary. The binary must be writable.
type Patcher interface {
	// SetID rewrites the binary's own install name.
	SetID(path, id string) error
	// Change rewrites one declared dependency from old to new.
	Change(path, old, new string) error
}

// InstallNameTool patches binaries with install_name_tool.
type InstallNameTool struct {
	Runner runner.Runner
}

func (p *InstallNameTool) SetID(path, id string) error {
	out, err := p.Runner.Run("install_name_tool", "-id", id, path)
	if err != nil {
		return errs.New(errs.ErrPatch, "set id", path, fmtOutput(err, out))
	}
	return nil
}

func (p *InstallNameTool) Change(path, old, new string) error {
	out, err := p.Runner.Run("install_name_tool", "-change", old, new, path)
	if err != nil {
		return errs.New(errs.ErrPatch, "change "+old, path, fmtOutput(err, out))
	}
	return nil
}

func fmtOutput(err error, out []byte) error {
	msg := strings.TrimSpace(string(out))
	if msg == "" {
		return err
	}
	return fmt.Errorf("%w\n%s", err, msg)
}
