package build

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/conneroisu/livedocs/internal/mdx"
)

//go:embed assets/main.css assets/main.js
var embeddedAssets embed.FS

// OutputWriter writes files below an output root. Every write lands in a
// temporary file first and is renamed into place, so a reader never sees a
// partially written page.
type OutputWriter struct {
	fs   afero.Fs
	root string
}

// NewOutputWriter creates a writer rooted at root on fsys.
func NewOutputWriter(fsys afero.Fs, root string) *OutputWriter {
	return &OutputWriter{fs: fsys, root: root}
}

// Path returns the filesystem path of a slash-separated output path.
func (w *OutputWriter) Path(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(rel))
}

// WriteFile atomically writes data to the slash-separated path rel, which
// must stay inside the root.
func (w *OutputWriter) WriteFile(rel string, data []byte) error {
	if !filepath.IsLocal(filepath.FromSlash(rel)) {
		return fmt.Errorf("%w: %s", ErrOutsideOutput, rel)
	}
	target := w.Path(rel)
	dir := filepath.Dir(target)
	if err := w.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(w.fs, dir, ".livedocs-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", rel, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = w.fs.Remove(tmpName)
		return fmt.Errorf("failed to write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		_ = w.fs.Remove(tmpName)
		return fmt.Errorf("failed to close %s: %w", rel, err)
	}
	if err := w.fs.Rename(tmpName, target); err != nil {
		_ = w.fs.Remove(tmpName)
		return fmt.Errorf("failed to move %s into place: %w", rel, err)
	}
	return nil
}

// SearchEntry is one record of search-index.json.
type SearchEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Content     string `json:"content"`
}

// searchContentLines caps the body lines kept per page.
const searchContentLines = 10

// SearchIndex builds the search records for pages in page order.
func SearchIndex(pages []*PageInfo) []SearchEntry {
	entries := make([]SearchEntry, 0, len(pages))
	for _, p := range pages {
		entry := SearchEntry{URL: p.URL, Content: searchContent(p.Document.Body)}
		if fm := p.Document.Frontmatter; fm != nil {
			entry.Title = fm.Title
			entry.Description = fm.Description
		}
		entries = append(entries, entry)
	}
	return entries
}

func searchContent(body string) string {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		if len(lines) == searchContentLines {
			break
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "```") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, " ")
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap renders the XML sitemap for pages.
func Sitemap(pages []*PageInfo) ([]byte, error) {
	set := sitemapURLSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	for _, p := range pages {
		set.URLs = append(set.URLs, sitemapURL{Loc: p.URL})
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("failed to encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Robots renders robots.txt pointing at the sitemap.
func Robots(baseURL string) []byte {
	return []byte("User-agent: *\nAllow: /\nSitemap: " + baseURL + "sitemap.xml\n")
}

// StylesheetURL is the public URL of a configured stylesheet once copied
// into the assets directory.
func StylesheetURL(baseURL, style string) string {
	return baseURL + path.Join("assets", filepath.Base(style))
}

func (b *Builder) writeSiteOutputs(ctx context.Context, pages []*PageInfo) error {
	css, err := embeddedAssets.ReadFile("assets/main.css")
	if err != nil {
		return fmt.Errorf("failed to read embedded stylesheet: %w", err)
	}
	highlight, err := mdx.HighlightCSS()
	if err != nil {
		return err
	}
	css = append(css, '\n')
	css = append(css, highlight...)
	if err := b.out.WriteFile("assets/main.css", css); err != nil {
		return err
	}

	js, err := embeddedAssets.ReadFile("assets/main.js")
	if err != nil {
		return fmt.Errorf("failed to read embedded script: %w", err)
	}
	if err := b.out.WriteFile("assets/main.js", js); err != nil {
		return err
	}

	for _, style := range b.cfg.Docs.Styles {
		data, err := os.ReadFile(style)
		if err != nil {
			b.logger.Warn(ctx, err, "Stylesheet not found", "path", style)
			continue
		}
		if err := b.out.WriteFile(path.Join("assets", filepath.Base(style)), data); err != nil {
			return err
		}
		b.logger.Debug(ctx, "Copied stylesheet", "path", style)
	}

	index, err := json.MarshalIndent(SearchIndex(pages), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode search index: %w", err)
	}
	if err := b.out.WriteFile("search-index.json", index); err != nil {
		return err
	}

	sitemap, err := Sitemap(pages)
	if err != nil {
		return err
	}
	if err := b.out.WriteFile("sitemap.xml", sitemap); err != nil {
		return err
	}

	return b.out.WriteFile("robots.txt", Robots(b.cfg.Docs.BaseURL))
}
