package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/frostyard/macbundle/internal/bundle"
	"github.com/frostyard/macbundle/internal/config"
	"github.com/frostyard/macbundle/internal/dylib"
	"github.com/frostyard/macbundle/internal/embed"
	"github.com/frostyard/macbundle/internal/logging"
	"github.com/frostyard/macbundle/internal/prereq"
	"github.com/frostyard/macbundle/internal/runner"
)

var (
	embedPrefix    string
	embedExtraLibs []string
	embedNoRuntime bool
)

var embedCmd = &cobra.Command{
	Use:   "embed <bundle.app>",
	Short: "Copy linked libraries into the bundle and make load paths relative",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := &runner.SystemRunner{}

		if errs := prereq.Check(r); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintln(os.Stderr, "  -", e)
			}
			return fmt.Errorf("missing prerequisites")
		}

		applyEmbedFlags(cfg)

		layout, err := openLayout(args[0])
		if err != nil {
			return err
		}
		if err := prereq.Writable(layout.ExecutableDir()); err != nil {
			return err
		}

		inspector, err := newInspector(cfg.Inspector, r)
		if err != nil {
			return err
		}

		fsys := afero.NewOsFs()
		e, err := embed.New(layout, fsys, inspector, &dylib.InstallNameTool{Runner: r}, embed.Options{
			Prefix:    cfg.Prefix,
			ExtraLibs: cfg.ExtraLibs,
		}, logging.Component("embed"))
		if err != nil {
			return err
		}

		fmt.Printf("Embedding libraries from %s into %s...\n", cfg.Prefix, layout.LibraryDir())
		report, err := e.Embed(cmd.Context())
		if err != nil {
			return err
		}
		printReport(report)

		if !cfg.Runtime.Enabled {
			return nil
		}
		return embedRuntime(cmd, layout, fsys)
	},
}

// applyEmbedFlags layers command-line flags over c.
func applyEmbedFlags(c *config.Config) {
	if embedPrefix != "" {
		c.SetPrefix(embedPrefix)
	}
	c.ExtraLibs = append(c.ExtraLibs, embedExtraLibs...)
	if embedNoRuntime {
		c.Runtime.Enabled = false
	}
}

func printReport(r *embed.Report) {
	fmt.Printf("Patch target: %s\n", r.Target)
	fmt.Printf("Load path:    %s\n", bundle.LoadPath(r.Anchor, "<library>"))
	fmt.Printf("Copied %d, adopted %d, rewrote %d load paths, fixed %d.\n",
		len(r.Copied), len(r.Adopted), r.Patched, r.Fixed)
}

func init() {
	embedCmd.Flags().StringVar(&embedPrefix, "prefix", "", "only embed dependencies under this prefix (default from config)")
	embedCmd.Flags().StringArrayVar(&embedExtraLibs, "extra-lib", nil, "library to embed even if nothing links it (repeatable)")
	embedCmd.Flags().BoolVar(&embedNoRuntime, "no-runtime", false, "skip embedding the compiler runtime")
	rootCmd.AddCommand(embedCmd)
}
