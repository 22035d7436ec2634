package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/livedocs/internal/build"
	"github.com/conneroisu/livedocs/internal/types"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l", "ls"},
	Short:   "List the components found in the components directory",
	Long: `List every component the registry extracted, with its variants, sizes
and the custom element tag its previews use.

Examples:
  livedocs list                # Table output
  livedocs list -f json        # JSON output
  livedocs list -f yaml        # YAML output`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringP("format", "f", "table", "output format (table, json, yaml)")
	listCmd.Flags().String("dir", "", "components directory (default: the configured one)")
}

// componentSummary is the listed view of a registry entry.
type componentSummary struct {
	Name       string   `json:"name" yaml:"name"`
	Tag        string   `json:"tag" yaml:"tag"`
	Path       string   `json:"path" yaml:"path"`
	Variants   []string `json:"variants" yaml:"variants"`
	Sizes      []string `json:"sizes,omitempty" yaml:"sizes,omitempty"`
	Attributes []string `json:"attributes" yaml:"attributes"`
}

func summarize(c *types.CachedComponent) componentSummary {
	return componentSummary{
		Name:       c.Name,
		Tag:        build.PreviewTag(c.Name),
		Path:       c.SourcePath,
		Variants:   c.Structure.Variants.Keys(),
		Sizes:      c.Structure.Sizes.Keys(),
		Attributes: c.Structure.ObservedAttributes,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(format)
	if format != "table" && format != "json" && format != "yaml" {
		return fmt.Errorf("unknown format %q (expected table, json or yaml)", format)
	}

	cfg, err := loadConfig(cmd, map[string]string{"dir": "components.dir"})
	if err != nil {
		return err
	}
	reg, err := scanComponents(cmd.Context(), cfg, newLogger(cfg))
	if err != nil {
		return err
	}

	components := reg.GetAll()
	summaries := make([]componentSummary, len(components))
	for i, c := range components {
		summaries[i] = summarize(c)
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	case "yaml":
		return yaml.NewEncoder(out).Encode(summaries)
	default:
		return writeComponentTable(out, summaries)
	}
}

func writeComponentTable(out io.Writer, summaries []componentSummary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(out, "No components found.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTAG\tVARIANTS\tSIZES\tPATH")
	for _, s := range summaries {
		sizes := strings.Join(s.Sizes, ",")
		if sizes == "" {
			sizes = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.Name, s.Tag, strings.Join(s.Variants, ","), sizes, s.Path)
	}
	return w.Flush()
}
