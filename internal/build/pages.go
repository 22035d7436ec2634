package build

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/conneroisu/livedocs/internal/files"
	"github.com/conneroisu/livedocs/internal/mdx"
)

// DefaultOrder is the sort key of pages without an explicit order.
const DefaultOrder = 999

// PageInfo is one discovered documentation page.
type PageInfo struct {
	// SourcePath is the file on disk.
	SourcePath string
	// RelativePath is the slash-separated path under the docs directory.
	RelativePath string
	// OutputPath is the slash-separated path under the output directory.
	OutputPath string
	// URL is the page's public path, prefixed with the base URL.
	URL      string
	Document *mdx.Document
}

// InNav reports whether the page appears in the navigation tree.
func (p *PageInfo) InNav() bool {
	return p.Document.Frontmatter == nil || p.Document.Frontmatter.Nav
}

// IsDocFile reports whether path has a documentation extension.
func IsDocFile(path string) bool {
	switch strings.ToLower(files.Ext(path)) {
	case "md", "mdx":
		return true
	}
	return false
}

// DiscoverPages parses every documentation file under docsDir and returns
// the pages stably sorted by their order field.
func DiscoverPages(docsDir, baseURL string) ([]*PageInfo, error) {
	info, err := os.Stat(docsDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("docs directory not found: %s", docsDir)
	}

	var pages []*PageInfo
	err = files.Walk(docsDir, func(p string, _ fs.FileInfo) error {
		if !IsDocFile(p) {
			return nil
		}

		content, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}

		doc, err := mdx.Parse(string(content))
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", p, err)
		}

		rel, err := filepath.Rel(docsDir, p)
		if err != nil {
			rel = filepath.Base(p)
		}
		rel = filepath.ToSlash(rel)

		if doc.Frontmatter != nil {
			if err := ValidateSlug(doc.Frontmatter.Slug); err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
		}

		out := OutputPath(rel, doc.Frontmatter)
		pages = append(pages, &PageInfo{
			SourcePath:   p,
			RelativePath: rel,
			OutputPath:   out,
			URL:          PageURL(baseURL, out),
			Document:     doc,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := checkDuplicateOutputs(pages); err != nil {
		return nil, err
	}

	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Document.Frontmatter.OrderOr(DefaultOrder) <
			pages[j].Document.Frontmatter.OrderOr(DefaultOrder)
	})

	return pages, nil
}

// OutputPath maps a page's relative source path to its output file:
// a slug override wins, then index pages keep their directory, and every
// other page gets a directory of its own.
func OutputPath(rel string, fm *mdx.Frontmatter) string {
	if fm != nil && fm.Slug != "" {
		return path.Join(strings.Trim(fm.Slug, "/"), "index.html")
	}

	dir := path.Dir(rel)
	stem := files.Stem(rel)
	if stem == "index" {
		return path.Join(dir, "index.html")
	}
	return path.Join(dir, stem, "index.html")
}

// ValidateSlug rejects slugs that are not a relative path made of plain
// segments. An empty slug is valid and means "no override".
func ValidateSlug(slug string) error {
	if slug == "" {
		return nil
	}
	trimmed := strings.Trim(slug, "/")
	if trimmed == "" {
		// "/" places the page at the site root.
		return nil
	}
	if strings.ContainsAny(trimmed, "\\\x00") {
		return fmt.Errorf("%w %q", ErrInvalidSlug, slug)
	}
	for _, seg := range strings.Split(trimmed, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("%w %q: segments must not be empty, '.' or '..'", ErrInvalidSlug, slug)
		}
	}
	return nil
}

// checkDuplicateOutputs reports every output path claimed by more than one
// page, since concurrent page tasks must write disjoint files.
func checkDuplicateOutputs(pages []*PageInfo) error {
	owners := make(map[string][]string, len(pages))
	for _, p := range pages {
		owners[p.OutputPath] = append(owners[p.OutputPath], p.RelativePath)
	}

	var errs []error
	for _, out := range sortedOutputs(owners) {
		if srcs := owners[out]; len(srcs) > 1 {
			errs = append(errs, fmt.Errorf("%w: %s is produced by %s", ErrDuplicateOutput, out, strings.Join(srcs, ", ")))
		}
	}
	return errors.Join(errs...)
}

func sortedOutputs(owners map[string][]string) []string {
	keys := make([]string, 0, len(owners))
	for k := range owners {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PageURL returns the public URL of an output file.
func PageURL(baseURL, outputPath string) string {
	dir := path.Dir(outputPath)
	if dir == "." || dir == "/" {
		return baseURL
	}
	return baseURL + dir + "/"
}
