package dylib

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/blacktop/go-macho"
	"github.com/blacktop/go-macho/types"
)

// dylibCmdSize is the fixed part of a dylib_command before its name.
const dylibCmdSize = 24

// buildDylib returns a minimal little-endian 64-bit MH_DYLIB for cpu with an
// LC_ID_DYLIB for id (when set) and one LC_LOAD_DYLIB per dep.
func buildDylib(t *testing.T, cpu types.CPU, id string, deps ...string) []byte {
	t.Helper()
	var cmds bytes.Buffer
	ncmds := 0
	add := func(cmd types.LoadCmd, name string) {
		size := (dylibCmdSize + len(name) + 1 + 7) &^ 7
		b := make([]byte, size)
		binary.LittleEndian.PutUint32(b[0:], uint32(cmd))
		binary.LittleEndian.PutUint32(b[4:], uint32(size))
		binary.LittleEndian.PutUint32(b[8:], dylibCmdSize)
		copy(b[dylibCmdSize:], name)
		cmds.Write(b)
		ncmds++
	}
	if id != "" {
		add(types.LC_ID_DYLIB, id)
	}
	for _, dep := range deps {
		add(types.LC_LOAD_DYLIB, dep)
	}

	var out bytes.Buffer
	hdr := types.FileHeader{
		Magic:        types.Magic64,
		CPU:          cpu,
		Type:         types.MH_DYLIB,
		NCommands:    uint32(ncmds),
		SizeCommands: uint32(cmds.Len()),
	}
	if err := binary.Write(&out, binary.LittleEndian, hdr); err != nil {
		t.Fatalf("write header: %v", err)
	}
	out.Write(cmds.Bytes())
	return out.Bytes()
}

// buildFat wraps slices in a universal binary header.
func buildFat(t *testing.T, cpus []types.CPU, slices [][]byte) []byte {
	t.Helper()
	const align = 0x1000
	var out bytes.Buffer
	if err := binary.Write(&out, binary.BigEndian, []uint32{uint32(types.MagicFat), uint32(len(slices))}); err != nil {
		t.Fatalf("write fat header: %v", err)
	}
	offset := uint32(align)
	for i, s := range slices {
		arch := macho.FatArchHeader{CPU: cpus[i], Offset: offset, Size: uint32(len(s)), Align: 12}
		if err := binary.Write(&out, binary.BigEndian, arch); err != nil {
			t.Fatalf("write fat arch: %v", err)
		}
		offset += (uint32(len(s)) + align - 1) &^ (align - 1)
	}
	for i, s := range slices {
		out.Write(make([]byte, align*(i+1)-out.Len()))
		out.Write(s)
	}
	return out.Bytes()
}

func writeBinary(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "libA.dylib")
	if err := os.WriteFile(path, data, 0444); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestMachOInspectorThinDylib(t *testing.T) {
	path := writeBinary(t, buildDylib(t, types.CPUArm64,
		"/opt/homebrew/lib/libA.dylib",
		"/opt/homebrew/opt/gmp/lib/libgmp.10.dylib",
		"/usr/lib/libSystem.B.dylib",
	))

	got, err := MachOInspector{}.Dependencies(path)
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	want := []string{
		"/opt/homebrew/lib/libA.dylib",
		"/opt/homebrew/opt/gmp/lib/libgmp.10.dylib",
		"/usr/lib/libSystem.B.dylib",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dependencies = %v, want %v", got, want)
	}
}

func TestMachOInspectorWithoutInstallName(t *testing.T) {
	path := writeBinary(t, buildDylib(t, types.CPUArm64, "", "/usr/lib/libSystem.B.dylib"))

	got, err := MachOInspector{}.Dependencies(path)
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	if want := []string{"/usr/lib/libSystem.B.dylib"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Dependencies = %v, want %v", got, want)
	}
}

func TestMachOInspectorUniversal(t *testing.T) {
	id := "@executable_path/lib/libA.dylib"
	deps := []string{"/opt/homebrew/lib/libB.dylib", "/usr/lib/libSystem.B.dylib"}
	cpus := []types.CPU{types.CPUArm64, types.CPUAmd64}
	path := writeBinary(t, buildFat(t, cpus, [][]byte{
		buildDylib(t, cpus[0], id, deps...),
		buildDylib(t, cpus[1], id, deps...),
	}))

	got, err := MachOInspector{}.Dependencies(path)
	if err != nil {
		t.Fatalf("Dependencies: %v", err)
	}
	want := append([]string{id}, deps...)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dependencies = %v, want %v", got, want)
	}
}
