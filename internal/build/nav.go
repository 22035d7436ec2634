package build

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/conneroisu/livedocs/internal/files"
	"github.com/conneroisu/livedocs/internal/renderer"
)

var titleCaser = cases.Title(language.English)

// HumanizeStem turns a file stem such as "getting-started" into
// "Getting Started".
func HumanizeStem(stem string) string {
	words := strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	if len(words) == 0 {
		return "Untitled"
	}
	return titleCaser.String(strings.Join(words, " "))
}

// Capitalize upper-cases the first rune of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func navTitle(p *PageInfo) string {
	if fm := p.Document.Frontmatter; fm != nil && fm.Title != "" {
		return fm.Title
	}
	return HumanizeStem(files.Stem(p.RelativePath))
}

// BuildNavigation groups in-nav pages by parent directory. Root pages stay
// flat; every subdirectory becomes a group in order of first appearance.
func BuildNavigation(pages []*PageInfo, baseURL string) []renderer.NavItem {
	var root []renderer.NavItem
	var dirs []string
	groups := make(map[string][]renderer.NavItem)

	for _, p := range pages {
		if !p.InNav() {
			continue
		}

		item := renderer.NavItem{Title: navTitle(p), Path: p.URL}
		dir := path.Dir(p.RelativePath)
		if dir == "." {
			root = append(root, item)
			continue
		}
		if _, ok := groups[dir]; !ok {
			dirs = append(dirs, dir)
		}
		groups[dir] = append(groups[dir], item)
	}

	nav := root
	for _, dir := range dirs {
		nav = append(nav, renderer.NavItem{
			Title:    Capitalize(path.Base(dir)),
			Path:     baseURL + dir + "/",
			Children: groups[dir],
		})
	}
	return nav
}

// WithActive returns a copy of nav with the item at url (and its group)
// marked active. The shared tree is never modified.
func WithActive(nav []renderer.NavItem, url string) []renderer.NavItem {
	if nav == nil {
		return nil
	}
	out := make([]renderer.NavItem, len(nav))
	for i, item := range nav {
		item.Children = WithActive(item.Children, url)
		item.Active = item.Path == url
		for _, c := range item.Children {
			if c.Active {
				item.Active = true
			}
		}
		out[i] = item
	}
	return out
}
