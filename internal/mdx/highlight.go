package mdx

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// HighlightStyle is the chroma style used for fenced code.
const HighlightStyle = "github"

var codeFormatter = chromahtml.New(chromahtml.WithClasses(true))

func highlightStyle() *chroma.Style {
	if s := styles.Get(HighlightStyle); s != nil {
		return s
	}
	return styles.Fallback
}

// HighlightCSS returns the stylesheet for the classes emitted by fenced
// code rendering.
func HighlightCSS() (string, error) {
	var buf bytes.Buffer
	if err := codeFormatter.WriteCSS(&buf, highlightStyle()); err != nil {
		return "", fmt.Errorf("failed to write highlight css: %w", err)
	}
	return buf.String(), nil
}

// Highlight renders code as class-annotated HTML for the given language.
// Unknown languages render as plain text.
func Highlight(code, language string) (string, error) {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("failed to tokenise %s code: %w", language, err)
	}

	var buf bytes.Buffer
	if err := codeFormatter.Format(&buf, highlightStyle(), it); err != nil {
		return "", fmt.Errorf("failed to format %s code: %w", language, err)
	}
	return buf.String(), nil
}

type codeHighlighter struct{}

func (h *codeHighlighter) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, h.renderFencedCodeBlock)
}

func (h *codeHighlighter) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	lang := strings.ToLower(string(n.Language(source)))
	code := segmentsText(n.Lines(), source)

	fmt.Fprintf(w, `<div class="code-block" data-language="%s">`, html.EscapeString(lang))
	out, err := Highlight(code, lang)
	if err != nil {
		_, _ = w.WriteString("<pre><code>" + html.EscapeString(code) + "</code></pre>")
	} else {
		_, _ = w.WriteString(out)
	}
	_, _ = w.WriteString("</div>\n")

	return ast.WalkSkipChildren, nil
}
