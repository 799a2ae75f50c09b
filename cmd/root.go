package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frostyard/macbundle/internal/bundle"
	"github.com/frostyard/macbundle/internal/config"
	"github.com/frostyard/macbundle/internal/dylib"
	"github.com/frostyard/macbundle/internal/logging"
	"github.com/frostyard/macbundle/internal/runner"
)

var (
	configPath string
	verbosity  int

	// cfg is loaded once before any subcommand runs.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "macbundle",
	Short: "Make a macOS application bundle self-contained",
	Long: `macbundle copies the package-manager libraries an application bundle
links against into the bundle and rewrites every load path to be relative
to the executable, so the bundle runs on machines without those packages.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Setup(verbosity)

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", configPath, err)
		}
		return nil
	},
}

func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultFile, "path to the macbundle config file")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (repeatable)")
}

// openLayout resolves a bundle argument against the loaded config.
func openLayout(path string) (bundle.Layout, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return bundle.Layout{}, err
	}
	return bundle.New(abs, cfg.Executable, cfg.LibDir)
}

// newInspector returns the inspector selected by name.
func newInspector(name string, r runner.Runner) (dylib.Inspector, error) {
	switch strings.ToLower(name) {
	case "", config.InspectorOtool:
		return &dylib.OtoolInspector{Runner: r}, nil
	case config.InspectorMachO:
		return dylib.MachOInspector{}, nil
	default:
		return nil, fmt.Errorf("unknown inspector %q (want %s or %s)", name, config.InspectorOtool, config.InspectorMachO)
	}
}
