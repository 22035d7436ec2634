//go:build property

package inline

import (
	"html"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestInlineProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1357)
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("escaped attribute values contain no raw special characters", prop.ForAll(
		func(value string) bool {
			usage := &Usage{Component: "Button", Props: []Prop{{Name: "label", Value: String(value)}}}
			out := ToCustomElement(usage, "button-preview")

			attr := strings.TrimPrefix(out, `<button-preview label="`)
			attr = strings.TrimSuffix(attr, `"></button-preview>`)
			return !strings.ContainsAny(attr, `"<>'`) && html.UnescapeString(attr) == value
		},
		gen.AnyString(),
	))

	properties.Property("nesting depth is balanced", prop.ForAll(
		func(depth int) bool {
			src := strings.Repeat("<Card>", depth) + "x" + strings.Repeat("</Card>", depth)
			usage, ok := Parse(src)
			if !ok || usage.Children == nil {
				return false
			}
			want := strings.Repeat("<Card>", depth-1) + "x" + strings.Repeat("</Card>", depth-1)
			return *usage.Children == want
		},
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}
