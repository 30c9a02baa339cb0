// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kakadu-engine/kbuild/internal/assetpath"
)

func newGenerateAssetPathCommand(app *App) *cobra.Command {
	var engineDir string

	cmd := &cobra.Command{
		Use:   "generate-asset-path",
		Short: "Write Generated/EngineAssetAbsolutePath.h for the engine asset dir",
		Long: `Write Generated/EngineAssetAbsolutePath.h next to the engine project.

The --engine path may contain $VAR, ${VAR} and a leading ~. The header is
written two levels above the asset directory and defines
` + assetpath.MacroName + ` as the absolute asset path.`,
		Example: `  kbuild generate-asset-path --engine '$(SolutionDir)Engine/Engine/Asset'
  kbuild generate-asset-path --engine '${SOLUTION_DIR}/Engine/Engine/Asset'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			header, err := assetpath.Generate(engineDir, assetpath.Options{})
			if err != nil {
				return app.reportError(cmd, err, "auto")
			}
			fmt.Fprintf(app.stdout, "Generated: %s\n", header)
			return nil
		},
	}

	cmd.Flags().StringVar(&engineDir, "engine", "", "path to Engine/Engine/Asset")
	_ = cmd.MarkFlagRequired("engine")

	return cmd
}
