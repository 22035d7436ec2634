package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/livedocs/internal/build"
	"github.com/conneroisu/livedocs/internal/renderer"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Build the static documentation site",
	Long: `Build every page under the docs directory into the output directory,
together with the stylesheet, search index, sitemap and robots.txt.

Examples:
  livedocs build                        # Build to the configured output (dist)
  livedocs build --output public        # Build to a specific directory
  livedocs build --base-url /my-lib/    # Build for a sub-path deployment`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringP("output", "o", "", "output directory")
	buildCmd.Flags().String("base-url", "", "base URL the site is served under")
	buildCmd.Flags().IntP("workers", "j", 0, "pages built in parallel (default: number of CPUs)")
	buildCmd.Flags().Bool("clean", false, "remove the output directory before building")
	buildCmd.Flags().BoolP("quiet", "q", false, "do not draw a progress bar")
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{
		"output":   "docs.output",
		"base-url": "docs.base_url",
		"workers":  "build.workers",
		"clean":    "build.clean",
	})
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	ctx := cmd.Context()

	reg, err := scanComponents(ctx, cfg, logger)
	if err != nil {
		return err
	}

	quiet, _ := cmd.Flags().GetBool("quiet")
	builder := build.NewBuilder(cfg, reg, renderer.NewDocRenderer(), logger,
		build.WithReporter(newProgressReporter(cmd.ErrOrStderr(), quiet)))

	result, err := builder.Build(ctx)
	if err != nil {
		if result != nil {
			for _, be := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", be.Error())
			}
		}
		return fmt.Errorf("build failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Built %d pages with %d component previews in %s\n",
		result.Pages, result.Components, result.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Output written to %s\n", result.OutputDir)

	return nil
}
