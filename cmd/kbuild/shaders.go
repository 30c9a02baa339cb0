// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/kakadu-engine/kbuild/internal/glslinc"
	"github.com/kakadu-engine/kbuild/internal/issue"
	"github.com/kakadu-engine/kbuild/internal/shader"
)

const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
	formatTOML     = "toml"
)

type (
	shaderListing struct {
		ScanRoot    string           `json:"scan_root" toml:"scan_root"`
		IncludePath []string         `json:"include_path" toml:"include_path"`
		Programs    []programListing `json:"programs" toml:"programs"`
	}

	programListing struct {
		Key    string   `json:"key" toml:"key"`
		Stages []string `json:"stages" toml:"stages"`
		Files  []string `json:"files" toml:"files"`
		// Complete is set when the program has both a vertex and a
		// fragment stage.
		Complete bool `json:"complete" toml:"complete"`
	}

	listFlags struct {
		scanDir     string
		includeDirs []string
		exclude     []string
		format      string
	}
)

func newShadersCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	shadersCmd := &cobra.Command{
		Use:   "shaders",
		Short: "Inspect and preprocess shader sources",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	shadersCmd.AddCommand(newShadersListCommand(app, rootFlags), newShadersFlattenCommand(app, rootFlags))
	return shadersCmd
}

func newShadersListCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the shader programs validate-shaders would check",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context(), rootFlags)
			if err != nil {
				return app.reportError(cmd, err, "auto")
			}
			style := cfg.UI.ColorScheme.GlamourStyle()

			listing, err := buildListing(flags.scanDir, slices.Concat(flags.includeDirs, cfg.Shaders.IncludeDirs), slices.Concat(flags.exclude, cfg.Shaders.Exclude))
			if err != nil {
				return app.reportError(cmd, err, style)
			}
			return app.reportError(cmd, writeListing(app.stdout, listing, flags.format, style), style)
		},
	}

	cmd.Flags().StringVar(&flags.scanDir, "scan-dir", "", "directory to scan for .vert/.frag shader stages")
	cmd.Flags().StringArrayVar(&flags.includeDirs, "include-dir", nil, "extra #include search directory (repeatable)")
	cmd.Flags().StringArrayVar(&flags.exclude, "exclude", nil, "glob of stage files to skip (repeatable)")
	cmd.Flags().StringVar(&flags.format, "format", formatMarkdown, "output format: markdown, json or toml")
	_ = cmd.MarkFlagRequired("scan-dir")

	return cmd
}

func buildListing(scanDir string, includeDirs, exclude []string) (shaderListing, error) {
	disc, err := shader.Discover(scanDir, shader.DiscoverOptions{Exclude: exclude})
	if err != nil {
		return shaderListing{}, err
	}
	if info, statErr := os.Stat(disc.Root); statErr != nil || !info.IsDir() {
		return shaderListing{}, newServiceError(fmt.Errorf("shader directory not found: %s", disc.Root), issue.ScanDirNotFoundId)
	}

	includePath, err := shader.BuildIncludeSearchPath(disc.Root, disc.Dirs, includeDirs)
	if err != nil {
		return shaderListing{}, err
	}

	listing := shaderListing{ScanRoot: disc.Root, IncludePath: includePath, Programs: []programListing{}}
	for _, prog := range disc.Programs.Programs() {
		entry := programListing{
			Key:      prog.Key,
			Files:    prog.Paths(),
			Complete: prog.HasStage(shader.StageVertex) && prog.HasStage(shader.StageFragment),
		}
		for _, s := range prog.Stages {
			entry.Stages = append(entry.Stages, string(s.Stage))
		}
		listing.Programs = append(listing.Programs, entry)
	}
	return listing, nil
}

func writeListing(w io.Writer, listing shaderListing, format, style string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	case formatTOML:
		return toml.NewEncoder(w).Encode(listing)
	case formatMarkdown:
		out, err := glamour.Render(listingMarkdown(listing), style)
		if err != nil {
			return fmt.Errorf("rendering listing: %w", err)
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unknown format %q (valid: markdown, json, toml)", format)
	}
}

func listingMarkdown(listing shaderListing) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Shader programs\n\nScan root: `%s`\n\n", listing.ScanRoot)
	if len(listing.Programs) == 0 {
		sb.WriteString("No .vert/.frag found.\n")
		return sb.String()
	}

	sb.WriteString("| Program | Stages | Complete |\n|---|---|---|\n")
	for _, p := range listing.Programs {
		complete := "no"
		if p.Complete {
			complete = "yes"
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", p.Key, strings.Join(p.Stages, ", "), complete)
	}
	sb.WriteString("\n## Include search path\n\n")
	for i, dir := range listing.IncludePath {
		fmt.Fprintf(&sb, "%d. `%s`\n", i+1, dir)
	}
	return sb.String()
}

func newShadersFlattenCommand(app *App, rootFlags *rootFlagValues) *cobra.Command {
	var (
		includeDirs []string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "flatten <file>",
		Short: "Inline #include directives into a single shader source",
		Long: `Inline #include directives into a single shader source.

Includes are looked up next to the including file first, then in each -I
directory in order. Each file is inlined once, and #line directives keep
compiler diagnostics pointing at the original files.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.loadConfig(cmd.Context(), rootFlags)
			if err != nil {
				return app.reportError(cmd, err, "auto")
			}
			style := cfg.UI.ColorScheme.GlamourStyle()

			res, err := glslinc.Resolve(args[0], slices.Concat(includeDirs, cfg.Shaders.IncludeDirs))
			if err != nil {
				return app.reportError(cmd, err, style)
			}
			slog.Debug("flattened shader", "file", args[0], "files", len(res.Files))
			if app.verbose() {
				fmt.Fprint(app.stderr, res.FormatFileTable())
			}

			if output == "" || output == "-" {
				_, err = io.WriteString(app.stdout, res.Source)
				return app.reportError(cmd, err, style)
			}
			if err := os.WriteFile(output, []byte(res.Source), 0o644); err != nil {
				return app.reportError(cmd, fmt.Errorf("writing %s: %w", output, err), style)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&includeDirs, "include-dir", "I", nil, "#include search directory (repeatable)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	return cmd
}
