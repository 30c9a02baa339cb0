// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kakadu-engine/kbuild/internal/pdbcopy"
)

func newCopyPDBCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "copy-pdb <solution-dir> <platform> <out-dir>",
		Short: "Copy vendor library PDB files into the build output",
		Long: `Copy glfw3.pdb and Vendor.pdb from the solution's <platform>-Debug folders
into <out-dir>, overwriting existing copies. <out-dir> must already exist.`,
		Example: `  kbuild copy-pdb . x64 Bin/x64-Debug/Engine`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := pdbcopy.Copy(args[0], args[1], args[2]); err != nil {
				return app.reportError(cmd, err, "auto")
			}
			fmt.Fprintln(app.stdout, "Done.")
			return nil
		},
	}
}
