package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/frostyard/macbundle/internal/fsutil"
	"github.com/frostyard/macbundle/internal/version"
)

var statusCmd = &cobra.Command{
	Use:   "status <bundle.app>",
	Short: "Show the bundle layout and what has been embedded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := openLayout(args[0])
		if err != nil {
			return err
		}
		fsys := afero.NewOsFs()

		fmt.Printf("macbundle:  %s\n", version.Tag())
		fmt.Printf("Bundle:     %s\n", layout.Root)
		fmt.Printf("Executable: %s\n", layout.ExecutablePath())
		if ok, _ := afero.Exists(fsys, layout.SplitExecutablePath()); ok {
			fmt.Printf("Patch:      %s\n", layout.SplitExecutablePath())
		}
		fmt.Printf("Libraries:  %s\n", layout.LibraryDir())

		entries, err := afero.ReadDir(fsys, layout.LibraryDir())
		if err != nil {
			fmt.Println("Status: nothing embedded")
			fmt.Println("Run 'macbundle embed' to get started.")
			return nil
		}
		libs := 0
		for _, e := range entries {
			if e.Mode().IsRegular() && !fsutil.IsMetadata(e.Name()) {
				libs++
			}
		}
		fmt.Printf("Embedded:   %d libraries\n", libs)

		runtimeDir := filepath.Join(layout.LibraryDir(), cfg.Runtime.Toolchain)
		versions, err := afero.ReadDir(fsys, runtimeDir)
		if err != nil || len(versions) == 0 {
			fmt.Println("Runtime:    not embedded")
			return nil
		}
		for _, v := range versions {
			if v.IsDir() && !strings.HasPrefix(v.Name(), ".") {
				fmt.Printf("Runtime:    %s (%s)\n", v.Name(), filepath.Join(runtimeDir, v.Name()))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
