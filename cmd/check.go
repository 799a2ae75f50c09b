package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/frostyard/macbundle/internal/embed"
	"github.com/frostyard/macbundle/internal/runner"
)

var checkCmd = &cobra.Command{
	Use:   "check <bundle.app>",
	Short: "Report load paths that still point outside the bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := openLayout(args[0])
		if err != nil {
			return err
		}
		inspector, err := newInspector(cfg.Inspector, &runner.SystemRunner{})
		if err != nil {
			return err
		}

		findings, err := embed.Verify(afero.NewOsFs(), layout, inspector, cfg.Prefix)
		if err != nil {
			return err
		}
		if len(findings) == 0 {
			fmt.Println("Bundle is self-contained.")
			return nil
		}
		for _, f := range findings {
			fmt.Printf("%s\n  %s: %s\n", f.Binary, f.Problem, f.Dependency)
		}
		return fmt.Errorf("%d load paths still reference %s", len(findings), cfg.Prefix)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
