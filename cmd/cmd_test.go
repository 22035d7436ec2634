package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with args against fresh Viper state and default
// flag values, returning everything written to stdout and stderr.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func scaffold(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	_, err := execute(t, "init")
	require.NoError(t, err)
}

func TestInitScaffoldsProject(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created docs.yml")

	for _, path := range []string{
		"docs.yml",
		"docs/index.md",
		"docs/getting-started.md",
		"docs/components/button.md",
		"components/Button.tsx",
	} {
		assert.FileExists(t, path)
	}
	assert.Contains(t, readFile(t, "docs.yml"), "title: My Documentation")

	require.NoError(t, os.WriteFile("docs/index.md", []byte("# Mine\n"), 0o644))
	out, err = execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Skipped")
	assert.Equal(t, "# Mine\n", readFile(t, "docs/index.md"))

	_, err = execute(t, "init", "--yes")
	require.NoError(t, err)
	assert.Contains(t, readFile(t, "docs/index.md"), "Welcome")
}

func TestInitIntoDirectory(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "init", "site")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join("site", "docs.yml"))
	assert.FileExists(t, filepath.Join("site", "components", "Button.tsx"))
}

func TestBuildScaffoldedSite(t *testing.T) {
	scaffold(t)

	out, err := execute(t, "build", "--quiet")
	require.NoError(t, err)
	assert.Contains(t, out, "Built 3 pages")

	assert.FileExists(t, "dist/index.html")
	assert.FileExists(t, "dist/getting-started/index.html")
	assert.FileExists(t, "dist/search-index.json")
	assert.FileExists(t, "dist/sitemap.xml")
	assert.FileExists(t, "dist/robots.txt")

	page := readFile(t, "dist/components/button/index.html")
	assert.Contains(t, page, "button-preview")
	assert.Contains(t, page, "customElements.define")
	assert.NotContains(t, page, "__hmr.js", "static builds carry no hot-reload client")
}

func TestBuildFlagsOverrideConfig(t *testing.T) {
	scaffold(t)

	_, err := execute(t, "build", "-q", "--output", "public", "--base-url", "/lib")
	require.NoError(t, err)

	assert.NoDirExists(t, "dist")
	assert.Contains(t, readFile(t, "public/sitemap.xml"), "/lib/")
	assert.Contains(t, readFile(t, "public/robots.txt"), "Sitemap: /lib/sitemap.xml")
}

func TestBuildEnvOverridesConfig(t *testing.T) {
	scaffold(t)
	t.Setenv("LIVEDOCS_DOCS_OUTPUT", "site")

	_, err := execute(t, "build", "-q")
	require.NoError(t, err)
	assert.FileExists(t, "site/index.html")
}

func TestBuildReportsBrokenPage(t *testing.T) {
	scaffold(t)
	require.NoError(t, os.WriteFile("docs/broken.md", []byte("---\ntitle: Broken\n"), 0o644))

	out, err := execute(t, "build", "-q")
	require.Error(t, err)
	assert.Contains(t, out, "broken.md")
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	scaffold(t)

	_, err := execute(t, "build", "-q", "--output", "docs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestList(t *testing.T) {
	scaffold(t)

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Button")
	assert.Contains(t, out, "button-preview")

	out, err = execute(t, "list", "-f", "json")
	require.NoError(t, err)
	var summaries []componentSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, []string{"primary", "secondary", "ghost"}, summaries[0].Variants)
	assert.Equal(t, []string{"sm", "md", "lg"}, summaries[0].Sizes)

	out, err = execute(t, "list", "-f", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Button")

	_, err = execute(t, "list", "-f", "xml")
	assert.Error(t, err)
}

func TestListWithoutComponents(t *testing.T) {
	t.Chdir(t.TempDir())

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No components found.")
}

func TestGenerate(t *testing.T) {
	scaffold(t)

	out, err := execute(t, "generate", "button")
	require.NoError(t, err)
	assert.Contains(t, out, "customElements.define('button-preview'")

	out, err = execute(t, "generate", "Button", "--tag", "ui-button")
	require.NoError(t, err)
	assert.Contains(t, out, "customElements.define('ui-button'")

	_, err = execute(t, "generate", "Buton")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did you mean Button")

	_, err = execute(t, "generate", "Button", "--tag", "button")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hyphen")
}

func TestServeMissingDirectory(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := execute(t, "serve", "--dir", "nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory not found")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.NotEmpty(t, out)

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Contains(t, info, "go_version")
}
