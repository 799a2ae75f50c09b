package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/xyproto/env/v2"
)

const (
	// DefaultFile is the config file looked up in the working directory.
	DefaultFile = "macbundle.toml"

	defaultPrefixARM   = "/opt/homebrew"
	defaultPrefixIntel = "/usr/local"
)

// Inspector names accepted in the inspector setting.
const (
	InspectorOtool = "otool"
	InspectorMachO = "macho"
)

type Config struct {
	Prefix     string   `toml:"prefix"`
	Executable string   `toml:"executable"`
	LibDir     string   `toml:"lib_dir"`
	Inspector  string   `toml:"inspector"`
	ExtraLibs  []string `toml:"extra_libs"`
	Runtime    Runtime  `toml:"runtime"`
}

// Runtime configures embedding of the compiler runtime plugin tree.
type Runtime struct {
	Enabled   bool   `toml:"enabled"`
	Root      string `toml:"root"`
	Toolchain string `toml:"toolchain"`
	Plugin    string `toml:"plugin"`
}

// DefaultPrefix returns the package-manager prefix: $HOMEBREW_PREFIX if set,
// otherwise Homebrew's default for the host architecture.
func DefaultPrefix() string {
	fallback := defaultPrefixIntel
	if runtime.GOARCH == "arm64" {
		fallback = defaultPrefixARM
	}
	return env.Str("HOMEBREW_PREFIX", fallback)
}

// RuntimeRoot returns where the compiler runtime lives under prefix.
func RuntimeRoot(prefix string) string {
	return filepath.Join(prefix, "opt", "gcc")
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	prefix := DefaultPrefix()
	return &Config{
		Prefix:    prefix,
		LibDir:    "lib",
		Inspector: env.Str("MACBUNDLE_INSPECTOR", InspectorOtool),
		Runtime: Runtime{
			Enabled:   true,
			Root:      RuntimeRoot(prefix),
			Toolchain: "gcc",
			Plugin:    "libgccjit.0.dylib",
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
// Unless the file sets runtime.root, the runtime root follows the file's
// prefix.
func Load(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, err
		}
		// Keep derived defaults for keys the file left empty
		if cfg.Prefix == "" {
			cfg.Prefix = DefaultPrefix()
		}
		if cfg.LibDir == "" {
			cfg.LibDir = "lib"
		}
		if !md.IsDefined("runtime", "root") || cfg.Runtime.Root == "" {
			cfg.Runtime.Root = RuntimeRoot(cfg.Prefix)
		}
		if cfg.Runtime.Toolchain == "" {
			cfg.Runtime.Toolchain = "gcc"
		}
		if cfg.Runtime.Plugin == "" {
			cfg.Runtime.Plugin = "libgccjit.0.dylib"
		}
	}

	return cfg, nil
}

// SetPrefix changes the prefix. A runtime root still derived from the old
// prefix moves with it; one set to anything else is kept.
func (c *Config) SetPrefix(prefix string) {
	if c.Runtime.Root == "" || c.Runtime.Root == RuntimeRoot(c.Prefix) {
		c.Runtime.Root = RuntimeRoot(prefix)
	}
	c.Prefix = prefix
}

func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(c)
}
