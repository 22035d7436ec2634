package renderer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func samplePage() *PageContext {
	return &PageContext{
		Title:       "Button",
		Description: `Buttons "trigger" actions`,
		SiteTitle:   "UI Kit",
		Content:     `<h1 id="button">Button</h1><div class="preview-container"><button-preview variant="primary">Go</button-preview></div>`,
		BaseURL:     "/docs/",
		Nav: []NavItem{
			{Title: "Introduction", Path: "/docs/"},
			{Title: "Components", Path: "/docs/components/", Children: []NavItem{
				{Title: "Button", Path: "/docs/components/button/", Active: true},
				{Title: "Card", Path: "/docs/components/card/"},
			}},
		},
		Toc:           []TocEntry{{Title: "Button", ID: "button", Level: 1}, {Title: "Usage <tips>", ID: "usage-tips", Level: 2}},
		WebComponents: []string{"customElements.define('button-preview', class extends HTMLElement {});\n"},
		Styles:        []string{"/docs/assets/theme.css"},
		Scripts:       []string{"/__hmr.js"},
	}
}

func render(t *testing.T, page *PageContext) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, NewDocRenderer().Render(context.Background(), &buf, page))
	return buf.String()
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	if match(n) {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAll(c, match)...)
	}
	return out
}

func attrOf(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func TestRenderPage(t *testing.T) {
	out := render(t, samplePage())

	doc, err := html.Parse(strings.NewReader(out))
	require.NoError(t, err)

	titles := findAll(doc, func(n *html.Node) bool { return n.Type == html.ElementNode && n.Data == "title" })
	require.Len(t, titles, 1)
	assert.Equal(t, "Button | UI Kit", titles[0].FirstChild.Data)

	metas := findAll(doc, func(n *html.Node) bool { return n.Data == "meta" && attrOf(n, "name") == "description" })
	require.Len(t, metas, 1)
	assert.Equal(t, `Buttons "trigger" actions`, attrOf(metas[0], "content"))

	links := findAll(doc, func(n *html.Node) bool { return n.Data == "link" })
	require.Len(t, links, 2)
	assert.Equal(t, "/docs/assets/main.css", attrOf(links[0], "href"))
	assert.Equal(t, "/docs/assets/theme.css", attrOf(links[1], "href"))

	active := findAll(doc, func(n *html.Node) bool { return n.Data == "a" && attrOf(n, "aria-current") == "page" })
	require.Len(t, active, 1)
	assert.Equal(t, "/docs/components/button/", attrOf(active[0], "href"))

	previews := findAll(doc, func(n *html.Node) bool { return n.Data == "button-preview" })
	assert.Len(t, previews, 1)

	scripts := findAll(doc, func(n *html.Node) bool { return n.Data == "script" })
	require.Len(t, scripts, 3)
	assert.Equal(t, "/docs/assets/main.js", attrOf(scripts[0], "src"))
	assert.Equal(t, "/__hmr.js", attrOf(scripts[2], "src"))

	assert.Contains(t, out, `<a href="#usage-tips">Usage &lt;tips&gt;</a>`)
	assert.Contains(t, out, `class="toc-level-2"`)
}

func TestRenderWithoutOptionalParts(t *testing.T) {
	out := render(t, &PageContext{Title: "Docs", SiteTitle: "Docs", BaseURL: "/", Content: "<p>hi</p>"})

	assert.Contains(t, out, "<title>Docs</title>")
	assert.NotContains(t, out, "toc")
	assert.NotContains(t, out, `name="description"`)
	assert.Contains(t, out, `href="/assets/main.css"`)
}

func TestHrefSanitizesScriptURLs(t *testing.T) {
	out := render(t, &PageContext{
		Title:   "x",
		BaseURL: "/",
		Nav:     []NavItem{{Title: "bad", Path: "javascript:alert(1)"}},
	})
	assert.NotContains(t, out, "javascript:alert")
}

func TestAssetURL(t *testing.T) {
	assert.Equal(t, "/assets/main.css", AssetURL("/", "main.css"))
	assert.Equal(t, "/docs/assets/main.js", AssetURL("/docs/", "main.js"))
	assert.Equal(t, "https://example.com/assets/a.css", AssetURL("https://example.com", "a.css"))
}

func TestRenderEscapesTextButNotContent(t *testing.T) {
	out := render(t, &PageContext{
		Title:     `<b>Docs</b>`,
		SiteTitle: `Kit & "Co"`,
		BaseURL:   "",
		Content:   `<section id="raw"><em>kept</em></section>`,
		Nav:       []NavItem{{Title: "A <b>", Path: "/a/", Active: true}},
	})

	assert.Contains(t, out, `<title>&lt;b&gt;Docs&lt;/b&gt; | Kit &amp; &#34;Co&#34;</title>`)
	assert.Contains(t, out, `<a class="site-title" href="/">Kit &amp; &#34;Co&#34;</a>`)
	assert.Contains(t, out, `<main class="content"><section id="raw"><em>kept</em></section></main>`)
	assert.Contains(t, out, `<li class="nav-item active"><a href="/a/" aria-current="page">A &lt;b&gt;</a></li>`)
}

func TestSidebarRendersNestedGroups(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Sidebar(samplePage().Nav).Render(context.Background(), &buf))

	doc, err := html.Parse(strings.NewReader(buf.String()))
	require.NoError(t, err)

	groups := findAll(doc, func(n *html.Node) bool { return n.Data == "a" && attrOf(n, "class") == "nav-group" })
	require.Len(t, groups, 1)
	assert.Equal(t, "/docs/components/", attrOf(groups[0], "href"))

	lists := findAll(doc, func(n *html.Node) bool { return n.Data == "ul" })
	assert.Len(t, lists, 2)

	items := findAll(doc, func(n *html.Node) bool { return n.Data == "li" })
	require.Len(t, items, 4)
	assert.Equal(t, "nav-item", attrOf(items[0], "class"))
}

func TestWebComponentsInlineModules(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WebComponents([]string{"a();\n", "b();\n"}).Render(context.Background(), &buf))
	assert.Equal(t, "<script type=\"module\">\na();\n</script><script type=\"module\">\nb();\n</script>", buf.String())
}
