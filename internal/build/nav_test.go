package build

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/livedocs/internal/mdx"
)

func page(rel, title string, nav bool) *PageInfo {
	doc := &mdx.Document{}
	if title != "" || !nav {
		doc.Frontmatter = &mdx.Frontmatter{Title: title, Nav: nav}
	}
	out := OutputPath(rel, doc.Frontmatter)
	return &PageInfo{RelativePath: rel, OutputPath: out, URL: PageURL("/", out), Document: doc}
}

func TestBuildNavigation(t *testing.T) {
	pages := []*PageInfo{
		page("index.md", "Home", true),
		page("guides/setup.md", "Setup", true),
		page("components/button.md", "Button", true),
		page("getting-started.md", "", true),
		page("guides/deploy.md", "", true),
		page("hidden.md", "Hidden", false),
	}

	nav := BuildNavigation(pages, "/")
	require.Len(t, nav, 4)

	assert.Equal(t, "Home", nav[0].Title)
	assert.Equal(t, "/", nav[0].Path)
	assert.Equal(t, "Getting Started", nav[1].Title)
	assert.Equal(t, "/getting-started/", nav[1].Path)

	assert.Equal(t, "Guides", nav[2].Title)
	assert.Equal(t, "/guides/", nav[2].Path)
	require.Len(t, nav[2].Children, 2)
	assert.Equal(t, "Setup", nav[2].Children[0].Title)
	assert.Equal(t, "Deploy", nav[2].Children[1].Title)

	assert.Equal(t, "Components", nav[3].Title)
	assert.Equal(t, "/components/button/", nav[3].Children[0].Path)
}

func TestWithActiveCopiesTree(t *testing.T) {
	nav := BuildNavigation([]*PageInfo{
		page("index.md", "Home", true),
		page("guides/setup.md", "Setup", true),
	}, "/")

	active := WithActive(nav, "/guides/setup/")

	assert.False(t, active[0].Active)
	assert.True(t, active[1].Active)
	assert.True(t, active[1].Children[0].Active)

	assert.False(t, nav[1].Active)
	assert.False(t, nav[1].Children[0].Active)
}

func TestHumanizeStem(t *testing.T) {
	assert.Equal(t, "Getting Started", HumanizeStem("getting-started"))
	assert.Equal(t, "Api Reference", HumanizeStem("api_reference"))
	assert.Equal(t, "Untitled", HumanizeStem("--"))
	assert.Equal(t, "Guides", Capitalize("guides"))
	assert.Equal(t, "", Capitalize(""))
}
