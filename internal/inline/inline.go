// Package inline parses a single component usage example such as
// <Button variant="primary" disabled>Save</Button> and renders it as a custom
// element tag. Attribute expressions are kept as opaque text and never
// evaluated.
package inline

import (
	"regexp"
	"strings"
)

// PropKind distinguishes the three prop value forms.
type PropKind int

const (
	PropString PropKind = iota
	PropBoolean
	PropExpression
)

// PropValue is a prop value as written in the usage.
type PropValue struct {
	Kind PropKind
	// Text holds the string value or the raw expression text.
	Text string
	Bool bool
}

// String builds a string prop.
func String(s string) PropValue { return PropValue{Kind: PropString, Text: s} }

// Boolean builds a boolean prop.
func Boolean(b bool) PropValue { return PropValue{Kind: PropBoolean, Bool: b} }

// Expression builds an expression prop.
func Expression(expr string) PropValue { return PropValue{Kind: PropExpression, Text: expr} }

// Prop is a named prop. Props keep their source order and names are
// unique: a repeated name keeps its first position and its last value.
type Prop struct {
	Name  string
	Value PropValue
}

// Usage is a parsed usage example.
type Usage struct {
	Component   string
	Props       []Prop
	Children    *string
	SelfClosing bool
}

// Prop returns the value of the named prop.
func (u *Usage) Prop(name string) (PropValue, bool) {
	for i := len(u.Props) - 1; i >= 0; i-- {
		if u.Props[i].Name == name {
			return u.Props[i].Value, true
		}
	}
	return PropValue{}, false
}

var (
	selfClosingRe = regexp.MustCompile(`^<([A-Z][a-zA-Z0-9]*)\s*([^/>]*?)\s*/>`)
	openTagRe     = regexp.MustCompile(`^<([A-Z][a-zA-Z0-9]*)\s*([^>]*)>`)
	propRe        = regexp.MustCompile(`([a-zA-Z][a-zA-Z0-9]*)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'|\{([^}]*)\}))?`)
)

// Parse reads a usage example from the start of src. It reports false when
// src is not a usage of an uppercase-led component or when the closing tag
// cannot be balanced; callers treat that as "not a usage".
func Parse(src string) (*Usage, bool) {
	src = strings.TrimSpace(src)

	if m := selfClosingRe.FindStringSubmatch(src); m != nil {
		return &Usage{
			Component:   m[1],
			Props:       parseProps(m[2]),
			SelfClosing: true,
		}, true
	}

	loc := openTagRe.FindStringSubmatchIndex(src)
	if loc == nil {
		return nil, false
	}
	name := src[loc[2]:loc[3]]
	attrs := src[loc[4]:loc[5]]
	bodyStart := loc[1]

	closeAt, ok := matchingClose(src[bodyStart:], name)
	if !ok {
		return nil, false
	}

	usage := &Usage{
		Component: name,
		Props:     parseProps(attrs),
	}
	if children := strings.TrimSpace(src[bodyStart : bodyStart+closeAt]); children != "" {
		usage.Children = &children
	}
	return usage, true
}

// matchingClose returns the offset of the </name> that balances an already
// consumed <name ...> open tag. Nested <name> tags increase the depth unless
// they are self-closing.
func matchingClose(s, name string) (int, bool) {
	open := "<" + name
	closeTag := "</" + name + ">"
	depth := 1

	for i := 0; i < len(s); {
		rest := s[i:]
		switch {
		case strings.HasPrefix(rest, closeTag):
			depth--
			if depth == 0 {
				return i, true
			}
			i += len(closeTag)
		case strings.HasPrefix(rest, open):
			after := rest[len(open):]
			if opensNested(after) {
				depth++
			}
			i += len(open)
		default:
			i++
		}
	}

	return 0, false
}

// opensNested decides, from the text right after "<Name", whether the
// occurrence is an open tag of the same component. Self-closing occurrences
// and longer names sharing the prefix do not count.
func opensNested(after string) bool {
	if after == "" {
		return false
	}
	switch after[0] {
	case '>':
		return true
	case '/':
		return false
	case ' ', '\t', '\n', '\r':
		end := strings.IndexByte(after, '>')
		if end < 0 {
			return false
		}
		return !strings.HasSuffix(strings.TrimSpace(after[:end]), "/")
	default:
		return false
	}
}

func parseProps(attrs string) []Prop {
	var props []Prop
	seen := make(map[string]int)
	for _, m := range propRe.FindAllStringSubmatchIndex(attrs, -1) {
		name := attrs[m[2]:m[3]]
		var value PropValue
		switch {
		case m[4] >= 0:
			value = String(attrs[m[4]:m[5]])
		case m[6] >= 0:
			value = String(attrs[m[6]:m[7]])
		case m[8] >= 0:
			value = Expression(attrs[m[8]:m[9]])
		default:
			value = Boolean(true)
		}
		if i, ok := seen[name]; ok {
			props[i].Value = value
			continue
		}
		seen[name] = len(props)
		props = append(props, Prop{Name: name, Value: value})
	}
	return props
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
)

// EscapeAttribute escapes s for a double-quoted HTML attribute value.
func EscapeAttribute(s string) string {
	return attrEscaper.Replace(s)
}

// ToCustomElement renders usage as a tag element. String props become quoted
// attributes, true booleans become bare attributes, false booleans and
// expressions are dropped. Children are copied verbatim.
func ToCustomElement(usage *Usage, tag string) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(tag)

	for _, p := range usage.Props {
		switch p.Value.Kind {
		case PropString:
			b.WriteByte(' ')
			b.WriteString(p.Name)
			b.WriteString(`="`)
			b.WriteString(EscapeAttribute(p.Value.Text))
			b.WriteByte('"')
		case PropBoolean:
			if p.Value.Bool {
				b.WriteByte(' ')
				b.WriteString(p.Name)
			}
		}
	}

	b.WriteByte('>')
	if usage.Children != nil {
		b.WriteString(*usage.Children)
	}
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')

	return b.String()
}
