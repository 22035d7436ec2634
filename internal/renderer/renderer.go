// Package renderer produces the final HTML page for a documentation page
// from a PageContext. The layout lives in layout.templ; run templ generate
// after editing it.
package renderer

//go:generate templ generate -f layout.templ

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// NavItem is one entry of the sidebar navigation tree.
type NavItem struct {
	Title    string    `json:"title"`
	Path     string    `json:"path"`
	Children []NavItem `json:"children,omitempty"`
	Active   bool      `json:"active"`
}

// TocEntry is one heading of the on-page outline.
type TocEntry struct {
	Title string `json:"title"`
	ID    string `json:"id"`
	Level int    `json:"level"`
}

// PageContext is everything the layout needs to render one page.
type PageContext struct {
	Title       string
	Description string
	SiteTitle   string
	// Content is trusted HTML produced by the markdown renderer.
	Content string
	Nav     []NavItem
	Toc     []TocEntry
	BaseURL string
	// WebComponents are generated custom element definitions, one per
	// component used on the page.
	WebComponents []string
	// Styles are stylesheet URLs in addition to the shared main.css.
	Styles []string
	// Scripts are extra module script URLs, e.g. the hot-reload client.
	Scripts []string
}

// PageRenderer renders a page context to w.
type PageRenderer interface {
	Render(ctx context.Context, w io.Writer, page *PageContext) error
}

// DocRenderer is the default documentation layout.
type DocRenderer struct{}

// NewDocRenderer creates the default layout renderer.
func NewDocRenderer() *DocRenderer {
	return &DocRenderer{}
}

// Render writes the full HTML document for page.
func (r *DocRenderer) Render(ctx context.Context, w io.Writer, page *PageContext) error {
	if err := Page(page).Render(ctx, w); err != nil {
		return fmt.Errorf("failed to render page %q: %w", page.Title, err)
	}
	return nil
}

// AssetURL joins the base URL and an asset file name.
func AssetURL(baseURL, name string) string {
	return strings.TrimSuffix(baseURL, "/") + "/assets/" + name
}

func pageTitle(p *PageContext) string {
	if p.SiteTitle != "" && p.SiteTitle != p.Title {
		return p.Title + " | " + p.SiteTitle
	}
	return p.Title
}

func homeURL(baseURL string) string {
	if baseURL == "" {
		return "/"
	}
	return baseURL
}

func tocLevelClass(level int) string {
	return "toc-level-" + strconv.Itoa(level)
}

// moduleScript inlines trusted generated JavaScript as a module script.
func moduleScript(code string) templ.Component {
	return templ.Raw("<script type=\"module\">\n" + code + "</script>")
}
