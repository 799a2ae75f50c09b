package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xyproto/env/v2"
)

// setenv sets key for the test and reloads env's cached copy of the
// environment, both now and after t.Setenv restores the old value.
func setenv(t *testing.T, key, value string) {
	t.Helper()
	t.Cleanup(env.Load)
	t.Setenv(key, value)
	env.Load()
}

func TestDefaultPrefixFromEnv(t *testing.T) {
	setenv(t, "HOMEBREW_PREFIX", "/custom/brew")
	if got := DefaultPrefix(); got != "/custom/brew" {
		t.Errorf("DefaultPrefix() = %q, want %q", got, "/custom/brew")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	setenv(t, "HOMEBREW_PREFIX", "/opt/homebrew")
	tmp := t.TempDir()
	cfg, err := Load(filepath.Join(tmp, DefaultFile))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Prefix != "/opt/homebrew" {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "/opt/homebrew")
	}
	if cfg.LibDir != "lib" {
		t.Errorf("LibDir = %q, want %q", cfg.LibDir, "lib")
	}
	if cfg.Inspector != InspectorOtool {
		t.Errorf("Inspector = %q, want %q", cfg.Inspector, InspectorOtool)
	}
	if !cfg.Runtime.Enabled {
		t.Error("Runtime.Enabled should default to true")
	}
	if cfg.Runtime.Root != "/opt/homebrew/opt/gcc" {
		t.Errorf("Runtime.Root = %q, want %q", cfg.Runtime.Root, "/opt/homebrew/opt/gcc")
	}
}

func TestLoadReadsExisting(t *testing.T) {
	tmp := t.TempDir()
	content := `prefix = "/usr/local"
extra_libs = ["/usr/local/lib/libtree-sitter.0.dylib"]

[runtime]
enabled = false
`
	path := filepath.Join(tmp, DefaultFile)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Prefix != "/usr/local" {
		t.Errorf("Prefix = %q, want %q", cfg.Prefix, "/usr/local")
	}
	if want := []string{"/usr/local/lib/libtree-sitter.0.dylib"}; !reflect.DeepEqual(cfg.ExtraLibs, want) {
		t.Errorf("ExtraLibs = %v, want %v", cfg.ExtraLibs, want)
	}
	if cfg.Runtime.Enabled {
		t.Error("Runtime.Enabled should be false")
	}
	if cfg.Runtime.Plugin != "libgccjit.0.dylib" {
		t.Errorf("Runtime.Plugin = %q, want default", cfg.Runtime.Plugin)
	}
}

func TestLoadRuntimeRootFollowsPrefix(t *testing.T) {
	setenv(t, "HOMEBREW_PREFIX", "/opt/homebrew")

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "root derived from file prefix",
			content: `prefix = "/usr/local"`,
			want:    "/usr/local/opt/gcc",
		},
		{
			name: "explicit root kept",
			content: `prefix = "/usr/local"

[runtime]
root = "/opt/gcc-14"
`,
			want: "/opt/gcc-14",
		},
		{
			name:    "no prefix in file",
			content: `lib_dir = "Frameworks"`,
			want:    "/opt/homebrew/opt/gcc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFile)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("WriteFile: %v", err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			if cfg.Runtime.Root != tt.want {
				t.Errorf("Runtime.Root = %q, want %q", cfg.Runtime.Root, tt.want)
			}
		})
	}
}

func TestSetPrefix(t *testing.T) {
	cfg := &Config{Prefix: "/opt/homebrew", Runtime: Runtime{Root: "/opt/homebrew/opt/gcc"}}
	cfg.SetPrefix("/usr/local")
	if cfg.Prefix != "/usr/local" || cfg.Runtime.Root != "/usr/local/opt/gcc" {
		t.Errorf("derived root did not follow: prefix=%q root=%q", cfg.Prefix, cfg.Runtime.Root)
	}

	cfg = &Config{Prefix: "/opt/homebrew", Runtime: Runtime{Root: "/opt/gcc-14"}}
	cfg.SetPrefix("/usr/local")
	if cfg.Runtime.Root != "/opt/gcc-14" {
		t.Errorf("explicit root changed to %q", cfg.Runtime.Root)
	}
}

func TestLoadInvalid(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, DefaultFile)
	if err := os.WriteFile(path, []byte("prefix = [broken"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected decode error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, DefaultFile)

	cfg := Default()
	cfg.Executable = "Emacs"
	cfg.ExtraLibs = []string{"/opt/homebrew/lib/libz.dylib"}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("Load after Save = %+v, want %+v", got, cfg)
	}
}
