package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/conneroisu/livedocs/internal/types"
)

func buttonStructure() *types.ComponentStructure {
	return &types.ComponentStructure{
		Name:               "Button",
		Variants:           types.NewClassTable("primary", "bg-blue text-white", "danger", "bg-red"),
		Sizes:              types.NewClassTable("sm", "px-2", "lg", "px-6"),
		BaseClasses:        "inline-flex rounded",
		DisabledClasses:    "opacity-50",
		DefaultVariant:     "primary",
		DefaultSize:        "sm",
		ObservedAttributes: []string{"variant", "size", "disabled", "loading"},
	}
}

func TestPascalCase(t *testing.T) {
	tests := map[string]string{
		"button-preview":   "ButtonPreview",
		"preview-block-12": "PreviewBlock12",
		"x":                "X",
		"a--b":             "AB",
	}
	for in, want := range tests {
		assert.Equal(t, want, PascalCase(in), in)
	}
}

func TestEscapeJS(t *testing.T) {
	assert.Equal(t, `it\'s a \\ path\nnext`, EscapeJS("it's a \\ path\nnext"))
	assert.Equal(t, `<\/script>`, EscapeJS("</script>"))
}

func TestWebComponent(t *testing.T) {
	code := WebComponent(buttonStructure(), "button-preview")

	assert.Contains(t, code, "class ButtonPreview extends HTMLElement")
	assert.Contains(t, code, "'primary': 'bg-blue text-white',")
	assert.Contains(t, code, "'lg': 'px-6',")
	assert.Contains(t, code, "const baseClasses = 'inline-flex rounded';")
	assert.Contains(t, code, "const disabledClasses = 'opacity-50';")
	assert.Contains(t, code, "const defaultVariant = 'primary';")
	assert.Contains(t, code, "const defaultSize = 'sm';")
	assert.Contains(t, code, "return ['variant', 'size', 'disabled', 'loading'];")
	assert.Contains(t, code, "customElements.get('button-preview')")
	assert.Contains(t, code, "customElements.define('button-preview', ButtonPreview);")
	assert.Contains(t, code, "globalThis."+SheetCacheGlobal)
	assert.Contains(t, code, "typeof HTMLElement === 'undefined'")
	assert.Contains(t, code, "aria-busy")

	assert.Less(t, strings.Index(code, "'primary'"), strings.Index(code, "'danger'"))
}

func TestWebComponentDeterministic(t *testing.T) {
	s := buttonStructure()
	assert.Equal(t, WebComponent(s, "button-preview"), WebComponent(s, "button-preview"))
}

func TestWebComponentEscapesValues(t *testing.T) {
	s := buttonStructure()
	s.BaseClasses = "it's"
	s.Variants = types.NewClassTable("primary", "a\nb")

	code := WebComponent(s, "button-preview")
	assert.Contains(t, code, `const baseClasses = 'it\'s';`)
	assert.Contains(t, code, `'primary': 'a\nb',`)
}

func TestWebComponentEmptySizes(t *testing.T) {
	s := buttonStructure()
	s.Sizes = &types.ClassTable{}
	s.DefaultSize = "default"
	s.ObservedAttributes = nil

	code := WebComponent(s, "badge-preview")
	assert.Contains(t, code, "const sizeClasses = {\n  };")
	assert.Contains(t, code, "return [];")
	assert.Contains(t, code, "class BadgePreview extends HTMLElement")
}

func TestArtifact(t *testing.T) {
	a := Artifact(buttonStructure(), "button-preview")

	assert.Equal(t, "button-preview", a.TagName)
	assert.Equal(t, WebComponent(buttonStructure(), "button-preview"), a.Code)
	assert.Equal(t, []string{"inline-flex", "rounded", "bg-blue", "text-white", "bg-red", "px-2", "px-6", "opacity-50"}, a.ClassesUsed)
	assert.Equal(t, []string{"variant", "size", "disabled", "loading"}, a.Attributes)
}
