// Package mdx reads documentation pages: the YAML header, fenced code blocks
// with their fence metadata, and the heading outline.
package mdx

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// HeadingEntry is one entry of a document outline.
type HeadingEntry struct {
	Title string
	ID    string
	Level int
}

// Document is a parsed documentation page.
type Document struct {
	Frontmatter *Frontmatter
	Body        string
	CodeBlocks  []CodeBlock
	Outline     []HeadingEntry
}

// Title returns the header title, or "" when there is none.
func (d *Document) Title() string {
	if d.Frontmatter == nil {
		return ""
	}
	return d.Frontmatter.Title
}

// LiveBlocks returns the blocks that render as previews, in source order.
func (d *Document) LiveBlocks() []CodeBlock {
	var live []CodeBlock
	for _, b := range d.CodeBlocks {
		if b.IsLive() {
			live = append(live, b)
		}
	}
	return live
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Footnote),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	goldmark.WithRendererOptions(
		html.WithUnsafe(),
		renderer.WithNodeRenderers(util.Prioritized(&codeHighlighter{}, 100)),
	),
)

// Parse splits source into header and body and walks the body for code
// blocks and headings. Line numbers refer to the original source.
func Parse(source string) (*Document, error) {
	fm, body, err := ExtractFrontmatter(source)
	if err != nil {
		return nil, err
	}

	offset := 0
	if fm != nil {
		consumed := source[:len(source)-len(body)]
		offset = strings.Count(consumed, "\n")
	}

	doc := &Document{Frontmatter: fm, Body: body}
	if err := walkBody(doc, []byte(body), offset); err != nil {
		return nil, err
	}

	return doc, nil
}

func walkBody(doc *Document, src []byte, offset int) error {
	pc := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	root := markdown.Parser().Parse(text.NewReader(src), parser.WithContext(pc))

	lines := newLineIndex(src)
	lastLine := 0
	lineAt := lines.lineAt

	return ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Heading:
			var b strings.Builder
			inlineText(node, src, &b)
			title := strings.TrimSpace(b.String())

			id := Slugify(title)
			if v, ok := node.AttributeString("id"); ok {
				if raw, ok := v.([]byte); ok {
					id = string(raw)
				}
			}
			doc.Outline = append(doc.Outline, HeadingEntry{Title: title, ID: id, Level: node.Level})
			if node.Lines().Len() > 0 {
				lastLine = lineAt(node.Lines().At(0).Start)
			}
			return ast.WalkSkipChildren, nil

		case *ast.FencedCodeBlock:
			info := ""
			line := 0
			switch {
			case node.Info != nil:
				info = string(node.Info.Segment.Value(src))
				line = lineAt(node.Info.Segment.Start)
			case node.Lines().Len() > 0:
				line = lineAt(node.Lines().At(0).Start) - 1
			default:
				from := lastLine + 1
				if prev := node.PreviousSibling(); prev != nil && prev.Type() == ast.TypeBlock {
					if n := prev.Lines().Len(); n > 0 {
						from = max(from, lineAt(prev.Lines().At(n-1).Start)+1)
					}
				}
				line = lines.nextFence(from)
			}

			contentEnd := line
			if n := node.Lines().Len(); n > 0 {
				contentEnd = lineAt(node.Lines().At(n - 1).Start)
			}
			start, end, closeLine := lines.fenceSpan(line, contentEnd)
			lastLine = closeLine

			block := NewCodeBlock(info, segmentsText(node.Lines(), src), line+offset)
			block.Start, block.End = start, end
			doc.CodeBlocks = append(doc.CodeBlocks, block)
			return ast.WalkSkipChildren, nil

		case *ast.CodeBlock:
			if node.Lines().Len() == 0 {
				return ast.WalkSkipChildren, nil
			}
			line := lineAt(node.Lines().At(0).Start)
			lastLine = line + node.Lines().Len() - 1
			block := NewCodeBlock("", segmentsText(node.Lines(), src), line+offset)
			block.Mode = ModeSource
			doc.CodeBlocks = append(doc.CodeBlocks, block)
			return ast.WalkSkipChildren, nil
		}

		if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
			lastLine = lineAt(n.Lines().At(n.Lines().Len() - 1).Start)
		}
		return ast.WalkContinue, nil
	})
}

// lineIndex maps between byte offsets and 1-based line numbers of a body.
type lineIndex struct {
	src    []byte
	starts []int
}

func newLineIndex(src []byte) *lineIndex {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{src: src, starts: starts}
}

func (li *lineIndex) lineAt(pos int) int {
	return sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > pos })
}

// text returns line n without its line ending, or "" past the end.
func (li *lineIndex) text(n int) string {
	if n < 1 || n > len(li.starts) {
		return ""
	}
	end := len(li.src)
	if n < len(li.starts) {
		end = li.starts[n] - 1
	}
	return strings.TrimSuffix(string(li.src[li.starts[n-1]:end]), "\r")
}

// fenceMarker locates the backtick or tilde run opening a fence on line.
func fenceMarker(line string) (col int, marker string) {
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c != '`' && c != '~' {
			continue
		}
		j := i
		for j < len(line) && line[j] == c {
			j++
		}
		if j-i >= 3 {
			return i, line[i:j]
		}
		return -1, ""
	}
	return -1, ""
}

// nextFence returns the first line at or after from that opens a fence.
func (li *lineIndex) nextFence(from int) int {
	for n := max(from, 1); n <= len(li.starts); n++ {
		if col, _ := fenceMarker(li.text(n)); col >= 0 {
			return n
		}
	}
	return from
}

// fenceSpan returns the byte range of the fence opened on line open whose
// last content line is contentEnd, and the line holding the closing marker.
// An unclosed fence runs to the end of the body.
func (li *lineIndex) fenceSpan(open, contentEnd int) (start, end, closeLine int) {
	col, marker := fenceMarker(li.text(open))
	if col < 0 || open < 1 || open > len(li.starts) {
		return 0, 0, contentEnd
	}
	start = li.starts[open-1] + col

	for n := max(contentEnd, open) + 1; n <= len(li.starts); n++ {
		rest := strings.TrimLeft(li.text(n), " \t>")
		if !strings.HasPrefix(rest, marker) {
			continue
		}
		if strings.TrimSpace(strings.TrimLeft(rest, marker[:1])) != "" {
			continue
		}
		return start, li.starts[n-1] + len(li.text(n)), n
	}
	return start, len(li.src), len(li.starts)
}

func segmentsText(lines *text.Segments, src []byte) string {
	var b strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return b.String()
}

func inlineText(n ast.Node, src []byte, b *strings.Builder) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		case *ast.AutoLink:
			b.Write(t.Label(src))
		default:
			inlineText(c, src, b)
		}
	}
}

// RenderHTML converts a Markdown body into HTML. Raw HTML in the body is
// passed through so preview containers survive rendering.
func RenderHTML(body string) (string, error) {
	var buf bytes.Buffer
	pc := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	if err := markdown.Convert([]byte(body), &buf, parser.WithContext(pc)); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}
