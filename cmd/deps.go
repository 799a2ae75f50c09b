package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frostyard/macbundle/internal/bundle"
	"github.com/frostyard/macbundle/internal/runner"
)

var depsCmd = &cobra.Command{
	Use:   "deps <binary>",
	Short: "List the load paths of a binary",
	Long: `List the load paths of a Mach-O binary. Paths marked "embed" are under
the configured prefix and would be copied by 'macbundle embed'; paths
marked "bundle" are already relative to the bundle.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inspector, err := newInspector(cfg.Inspector, &runner.SystemRunner{})
		if err != nil {
			return err
		}
		deps, err := inspector.Dependencies(args[0])
		if err != nil {
			return err
		}
		printDeps(cmd.OutOrStdout(), deps, cfg.Prefix)
		return nil
	},
}

func printDeps(w io.Writer, deps []string, prefix string) {
	for _, dep := range deps {
		fmt.Fprintf(w, "%-7s %s\n", depKind(dep, prefix), dep)
	}
}

func depKind(dep, prefix string) string {
	switch {
	case bundle.IsRelative(dep):
		return "bundle"
	case prefix != "" && strings.HasPrefix(dep, prefix):
		return "embed"
	default:
		return "system"
	}
}

func init() {
	rootCmd.AddCommand(depsCmd)
}
