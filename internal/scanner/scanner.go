// Package scanner recovers a component's styling model from its source text.
//
// Extraction is a set of independent regular-expression passes rather than a
// parser for the component language. Each pass owns one field of
// types.ComponentStructure and degrades to a fixed default when its pattern
// is absent, so partially written or unusual sources still produce a usable
// structure. The only fatal condition is a source without any variant class
// table (ErrMissingVariants).
//
// The recognized shapes are:
//
//	const variantClasses: Record<Variant, string> = { primary: '...', ... }
//	const sizeClasses = { sm: '...', lg: '...' }
//	const baseClasses = 'inline-flex ' + 'rounded'
//	const disabledClasses = 'opacity-50'
//	interface ButtonProps { variant?: Variant; ... }
//	export function Button({ variant, size, ...rest }: ButtonProps) { ... }
package scanner

import (
	"errors"
	"regexp"
	"strings"

	"github.com/conneroisu/livedocs/internal/types"
)

const (
	// DefaultName is used when no uppercase declaration is found.
	DefaultName = "Component"
	// DefaultKey is the default variant/size when a table is empty.
	DefaultKey = "default"
	// DefaultDisabledClasses applies when the source declares none.
	DefaultDisabledClasses = "opacity-50 pointer-events-none cursor-not-allowed"

	variantTableName = "variantClasses"
	sizeTableName    = "sizeClasses"
)

// ErrMissingVariants is returned when no variantClasses entries are found.
var ErrMissingVariants = errors.New("missing variant classes: component must define a variantClasses record")

var (
	nameRe        = regexp.MustCompile(`(?:export\s+)?(?:function|const)\s+([A-Z][a-zA-Z0-9]*)`)
	recordRe      = regexp.MustCompile(`const\s+(\w+)\s*(?::\s*Record<[^>]+>)?\s*=\s*\{([^}]+)\}`)
	entryRe       = regexp.MustCompile(`(?:^|[\s{,])(?:'([\w-]+)'|"([\w-]+)"|(\w+))\s*:\s*['"]([^'"]*)['"]`)
	baseConcatRe  = regexp.MustCompile(`const\s+baseClasses\s*=\s*((?:['"][^'"]*['"]\s*\+?\s*)+)`)
	quotedRe      = regexp.MustCompile(`['"]([^'"]*)['"]`)
	disabledRe    = regexp.MustCompile(`(?:const\s+)?disabledCl(?:asse)?s\s*=\s*['"]([^'"]+)['"]`)
	propsBodyRe   = regexp.MustCompile(`(?:interface\s+\w*Props(?:\s+extends\s+[^{]+)?|type\s+\w*Props\s*=)\s*\{([^}]+)\}`)
	destructureRe = regexp.MustCompile(`\{\s*([^}]+)\s*\}\s*(?::\s*\w+)?\s*\)`)
	identRe       = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)
)

var (
	commonAttributes   = []string{"variant", "size", "disabled", "loading"}
	excludedAttributes = map[string]bool{"children": true, "className": true, "style": true}
)

// Extract recovers the component structure from source.
func Extract(source string) (*types.ComponentStructure, error) {
	variants := extractTable(source, variantTableName)
	if variants.Len() == 0 {
		return nil, ErrMissingVariants
	}
	sizes := extractTable(source, sizeTableName)

	return &types.ComponentStructure{
		Name:               extractName(source),
		Variants:           variants,
		Sizes:              sizes,
		BaseClasses:        extractBaseClasses(source),
		DisabledClasses:    extractDisabledClasses(source),
		DefaultVariant:     variants.First(DefaultKey),
		DefaultSize:        sizes.First(DefaultKey),
		ObservedAttributes: extractAttributes(source),
	}, nil
}

func extractName(source string) string {
	if m := nameRe.FindStringSubmatch(source); m != nil {
		return m[1]
	}
	return DefaultName
}

// extractTable merges every `const <name> = {...}` declaration with the
// given name. A repeated key keeps its first position and its last value.
func extractTable(source, name string) *types.ClassTable {
	table := &types.ClassTable{}
	for _, m := range recordRe.FindAllStringSubmatch(source, -1) {
		if m[1] != name {
			continue
		}
		for _, entry := range entryRe.FindAllStringSubmatch(m[2], -1) {
			key := entry[1] + entry[2] + entry[3]
			table.Set(key, entry[4])
		}
	}
	return table
}

func extractBaseClasses(source string) string {
	m := baseConcatRe.FindStringSubmatch(source)
	if m == nil {
		return ""
	}

	var fragments []string
	for _, q := range quotedRe.FindAllStringSubmatch(m[1], -1) {
		fragments = append(fragments, q[1])
	}
	return strings.Join(strings.Fields(strings.Join(fragments, " ")), " ")
}

func extractDisabledClasses(source string) string {
	if m := disabledRe.FindStringSubmatch(source); m != nil {
		return m[1]
	}
	return DefaultDisabledClasses
}

func extractAttributes(source string) []string {
	seen := make(map[string]bool)
	var attrs []string
	add := func(name string) {
		if name == "" || excludedAttributes[name] || seen[name] || !identRe.MatchString(name) {
			return
		}
		seen[name] = true
		attrs = append(attrs, name)
	}

	for _, token := range commonAttributes {
		if strings.Contains(source, token) {
			add(token)
		}
	}

	for _, m := range propsBodyRe.FindAllStringSubmatch(source, -1) {
		for _, line := range strings.Split(m[1], "\n") {
			add(propFieldName(line))
		}
	}

	if m := destructureRe.FindStringSubmatch(source); m != nil {
		for _, part := range strings.Split(m[1], ",") {
			add(destructuredName(part))
		}
	}

	return attrs
}

func propFieldName(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "/*") || strings.HasPrefix(line, "*") {
		return ""
	}
	line = strings.TrimPrefix(line, "readonly ")

	end := strings.IndexAny(line, ":?")
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(line[:end])
}

func destructuredName(part string) string {
	part = strings.TrimSpace(part)
	if part == "" || strings.HasPrefix(part, "...") {
		return ""
	}
	if end := strings.IndexAny(part, "=:"); end >= 0 {
		part = part[:end]
	}
	return strings.TrimSpace(part)
}
