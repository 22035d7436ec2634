package mdx

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
)

// Slugify lowercases text and collapses every run of non-alphanumeric
// characters into a single hyphen, trimming hyphens at both ends.
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	pending := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}

	return b.String()
}

// headingIDs implements goldmark's parser.IDs so rendered heading anchors
// use Slugify. Repeated slugs get a numeric suffix.
type headingIDs struct {
	seen map[string]int
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{seen: make(map[string]int)}
}

func (h *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	base := Slugify(string(value))
	if base == "" {
		if kind == ast.KindHeading {
			base = "heading"
		} else {
			base = "id"
		}
	}

	id := base
	if n, ok := h.seen[base]; ok {
		for {
			n++
			id = base + "-" + strconv.Itoa(n)
			if _, taken := h.seen[id]; !taken {
				break
			}
		}
		h.seen[base] = n
	}
	h.seen[id] = 0

	return []byte(id)
}

func (h *headingIDs) Put(value []byte) {
	h.seen[string(value)] = 0
}
