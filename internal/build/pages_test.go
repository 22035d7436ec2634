package build

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/livedocs/internal/mdx"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		rel  string
		slug string
		want string
	}{
		{"index.mdx", "", "index.html"},
		{"button.mdx", "", "button/index.html"},
		{"guides/index.md", "", "guides/index.html"},
		{"guides/setup.md", "", "guides/setup/index.html"},
		{"guides/setup.md", "start", "start/index.html"},
		{"a.md", "/nested/path/", "nested/path/index.html"},
	}

	for _, tt := range tests {
		t.Run(tt.rel+"|"+tt.slug, func(t *testing.T) {
			var fm *mdx.Frontmatter
			if tt.slug != "" {
				fm = &mdx.Frontmatter{Slug: tt.slug}
			}
			assert.Equal(t, tt.want, OutputPath(tt.rel, fm))
		})
	}
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "/", PageURL("/", "index.html"))
	assert.Equal(t, "/button/", PageURL("/", "button/index.html"))
	assert.Equal(t, "/docs/guides/setup/", PageURL("/docs/", "guides/setup/index.html"))
}

func TestIsDocFile(t *testing.T) {
	assert.True(t, IsDocFile("a.md"))
	assert.True(t, IsDocFile("a.MDX"))
	assert.False(t, IsDocFile("a.tsx"))
	assert.False(t, IsDocFile("README"))
}

func TestDiscoverPagesSortsByOrder(t *testing.T) {
	docs := t.TempDir()
	writeFile(t, filepath.Join(docs, "a.md"), "# A\n")
	writeFile(t, filepath.Join(docs, "b.md"), "---\ntitle: B\norder: 2\n---\n# B\n")
	writeFile(t, filepath.Join(docs, "c.md"), "---\ntitle: C\norder: 1\n---\n# C\n")
	writeFile(t, filepath.Join(docs, "d.md"), "# D\n")
	writeFile(t, filepath.Join(docs, "notes.txt"), "ignored")

	pages, err := DiscoverPages(docs, "/")
	require.NoError(t, err)

	var rels []string
	for _, p := range pages {
		rels = append(rels, p.RelativePath)
	}
	assert.Equal(t, []string{"c.md", "b.md", "a.md", "d.md"}, rels)
	assert.Equal(t, "/c/", pages[0].URL)
	assert.Equal(t, "c/index.html", pages[0].OutputPath)
}

func TestDiscoverPagesErrors(t *testing.T) {
	_, err := DiscoverPages(filepath.Join(t.TempDir(), "missing"), "/")
	assert.Error(t, err)

	docs := t.TempDir()
	writeFile(t, filepath.Join(docs, "broken.md"), "---\ntitle: [unclosed\n---\n")
	_, err = DiscoverPages(docs, "/")
	require.Error(t, err)
	assert.ErrorIs(t, err, mdx.ErrMalformedFrontmatter)
	assert.Contains(t, err.Error(), "broken.md")
}

func TestValidateSlug(t *testing.T) {
	for _, slug := range []string{"", "/", "start", "/nested/path/", "v1.2/api"} {
		assert.NoError(t, ValidateSlug(slug), slug)
	}
	for _, slug := range []string{"../../etc/evil", "a/../../b", "..", "./x", "a//b", `a\b`} {
		assert.ErrorIs(t, ValidateSlug(slug), ErrInvalidSlug, slug)
	}
}

func TestDiscoverPagesRejectsEscapingSlug(t *testing.T) {
	docs := t.TempDir()
	writeFile(t, filepath.Join(docs, "evil.md"), "---\nslug: ../../etc/evil\n---\n# Evil\n")

	_, err := DiscoverPages(docs, "/")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSlug)
	assert.Contains(t, err.Error(), "evil.md")
}

func TestDiscoverPagesRejectsDuplicateOutputs(t *testing.T) {
	docs := t.TempDir()
	writeFile(t, filepath.Join(docs, "guide.md"), "# Guide\n")
	writeFile(t, filepath.Join(docs, "other.mdx"), "---\nslug: guide\n---\n# Other\n")
	writeFile(t, filepath.Join(docs, "unique.md"), "# Unique\n")

	_, err := DiscoverPages(docs, "/")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateOutput)
	assert.Contains(t, err.Error(), "guide/index.html")
	assert.Contains(t, err.Error(), "guide.md")
	assert.Contains(t, err.Error(), "other.mdx")
	assert.NotContains(t, err.Error(), "unique.md")
}
