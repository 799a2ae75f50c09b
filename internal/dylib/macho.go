package dylib

import (
	"errors"

	"github.com/blacktop/go-macho"

	"github.com/frostyard/macbundle/internal/errs"
)

// MachOInspector reads load commands directly instead of shelling out.
// Universal binaries are read from their first slice; install_name_tool
// rewrites every slice alike, so the slices agree on load paths.
type MachOInspector struct{}

func (MachOInspector) Dependencies(path string) ([]string, error) {
	f, closeFn, err := openSlice(path)
	if err != nil {
		return nil, errs.New(errs.ErrInspection, "read load commands", path, err)
	}
	defer closeFn()

	var deps []string
	if id := f.DylibID(); id != nil && id.Name != "" {
		deps = append(deps, id.Name)
	}
	for _, lib := range f.ImportedLibraries() {
		if len(deps) > 0 && lib == deps[0] {
			continue
		}
		deps = append(deps, lib)
	}
	return deps, nil
}

func openSlice(path string) (*macho.File, func(), error) {
	fat, err := macho.OpenFat(path)
	if err == nil {
		if len(fat.Arches) == 0 {
			_ = fat.Close()
			return nil, func() {}, errors.New("universal binary has no slices")
		}
		return fat.Arches[0].File, func() { _ = fat.Close() }, nil
	}
	if !errors.Is(err, macho.ErrNotFat) {
		return nil, func() {}, err
	}

	f, err := macho.Open(path)
	if err != nil {
		return nil, func() {}, err
	}
	return f, func() { _ = f.Close() }, nil
}
