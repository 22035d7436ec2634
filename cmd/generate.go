package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/livedocs/internal/build"
	"github.com/conneroisu/livedocs/internal/registry"
	"github.com/conneroisu/livedocs/internal/validation"
)

var generateCmd = &cobra.Command{
	Use:     "generate <Component>",
	Aliases: []string{"gen", "g"},
	Short:   "Print the custom element generated for a component",
	Long: `Generate the framework-free custom element for one component and write
its JavaScript to stdout.

Examples:
  livedocs generate Button                      # Defines <button-preview>
  livedocs generate Button --tag ui-button      # Use a custom tag name
  livedocs generate Button > button.js`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("tag", "t", "", "custom element tag (default <name>-preview)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, map[string]string{})
	if err != nil {
		return err
	}
	reg, err := scanComponents(cmd.Context(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	name := args[0]
	component, ok := reg.Get(name)
	if !ok {
		if suggestions := reg.Suggest(name, 3); len(suggestions) > 0 {
			return fmt.Errorf("%w: %q in %s; did you mean %s?", registry.ErrComponentNotFound,
				name, cfg.Components.Dir, strings.Join(suggestions, ", "))
		}
		return fmt.Errorf("%w: %q in %s", registry.ErrComponentNotFound, name, cfg.Components.Dir)
	}

	tag, _ := cmd.Flags().GetString("tag")
	if tag == "" {
		tag = build.PreviewTag(component.Name)
	}
	if err := validation.ValidateTagName(tag); err != nil {
		return err
	}

	artifact, err := reg.GenerateArtifact(component.Name, tag)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), artifact.Code)
	return err
}
