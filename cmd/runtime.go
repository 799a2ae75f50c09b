package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/frostyard/macbundle/internal/bundle"
	"github.com/frostyard/macbundle/internal/gccjit"
	"github.com/frostyard/macbundle/internal/logging"
	"github.com/frostyard/macbundle/internal/prereq"
)

var runtimeRoot string

var runtimeCmd = &cobra.Command{
	Use:   "runtime <bundle.app>",
	Short: "Embed only the compiler runtime (libgccjit) into the bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if runtimeRoot != "" {
			cfg.Runtime.Root = runtimeRoot
		}

		layout, err := openLayout(args[0])
		if err != nil {
			return err
		}
		if err := prereq.Writable(layout.ExecutableDir()); err != nil {
			return err
		}
		return embedRuntime(cmd, layout, afero.NewOsFs())
	},
}

func embedRuntime(cmd *cobra.Command, layout bundle.Layout, fsys afero.Fs) error {
	e, err := gccjit.New(layout, fsys, gccjit.Options{
		Root:      cfg.Runtime.Root,
		Toolchain: cfg.Runtime.Toolchain,
		Plugin:    cfg.Runtime.Plugin,
	}, logging.Component("gccjit"))
	if err != nil {
		return err
	}

	fmt.Printf("Embedding compiler runtime from %s...\n", e.SourceDir())
	res, err := e.Embed(cmd.Context())
	if err != nil {
		return err
	}
	if res.AlreadyEmbedded {
		fmt.Printf("Runtime %s already embedded at %s\n", res.Version, res.Dest)
		return nil
	}
	fmt.Printf("Runtime %s embedded at %s (%d files)\n", res.Version, res.Dest, res.Files)
	return nil
}

func init() {
	runtimeCmd.Flags().StringVar(&runtimeRoot, "root", "", "runtime installation root (default from config)")
	rootCmd.AddCommand(runtimeCmd)
}
