package build

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/conneroisu/livedocs/internal/adapters"
	"github.com/conneroisu/livedocs/internal/generator"
	"github.com/conneroisu/livedocs/internal/inline"
	"github.com/conneroisu/livedocs/internal/logging"
	"github.com/conneroisu/livedocs/internal/mdx"
	"github.com/conneroisu/livedocs/internal/types"
)

// ComponentSource is the registry view the build needs.
type ComponentSource interface {
	Contains(name string) bool
	GenerateArtifact(name, tag string) (*types.Artifact, error)
}

// PreviewTag is the custom element name used for a registered component.
func PreviewTag(component string) string {
	return strings.ToLower(component) + "-preview"
}

// BlockTag is the custom element name used for a block that carries a
// full component definition.
func BlockTag(block mdx.CodeBlock) string {
	return "preview-" + block.ID
}

// PageTransform is the outcome of transforming one page's live blocks.
type PageTransform struct {
	// Artifacts are the generated elements in first-use order.
	Artifacts []*types.Artifact
	// Replacements maps a block ID to its preview markup.
	Replacements map[string]string
	// Components counts transformed blocks.
	Components int
}

// TransformBlocks turns each live block of doc into preview markup. Artifact
// generation is memoized per component for the duration of this call only.
// Blocks that cannot be resolved are logged and left as source.
func TransformBlocks(ctx context.Context, doc *mdx.Document, source ComponentSource,
	adapter adapters.FrameworkAdapter, logger logging.Logger) *PageTransform {
	result := &PageTransform{Replacements: make(map[string]string)}
	memo := make(map[string]string)

	for _, block := range doc.LiveBlocks() {
		usage, ok := inline.Parse(block.Source)
		if !ok {
			structure, err := adapter.Extract(block.Source)
			if err != nil {
				logger.Warn(ctx, err, "Failed to transform live block", "block", block.ID)
				continue
			}
			tag := BlockTag(block)
			result.Artifacts = append(result.Artifacts, generator.Artifact(structure, tag))
			result.Replacements[block.ID] = fmt.Sprintf("<%s>%s</%s>", tag, html.EscapeString(structure.Name), tag)
			result.Components++
			continue
		}

		if !source.Contains(usage.Component) {
			logger.Warn(ctx, nil, "Component not found in registry",
				"component", usage.Component, "block", block.ID)
			continue
		}

		key := strings.ToLower(usage.Component)
		tag, seen := memo[key]
		if !seen {
			tag = PreviewTag(usage.Component)
			artifact, err := source.GenerateArtifact(usage.Component, tag)
			if err != nil {
				logger.Warn(ctx, err, "Failed to generate element",
					"component", usage.Component, "block", block.ID)
				continue
			}
			memo[key] = tag
			result.Artifacts = append(result.Artifacts, artifact)
		}

		result.Replacements[block.ID] = inline.ToCustomElement(usage, tag)
		result.Components++
	}

	return result
}

// SubstitutePreviews replaces the fenced form of every transformed live
// block in body with a preview container followed by the block's source
// as a plain fence. Blocks are located by the byte range the parser
// recorded, so any fence info string or indentation is handled.
func SubstitutePreviews(body string, blocks []mdx.CodeBlock, replacements map[string]string) string {
	// Splice from the end so earlier offsets stay valid.
	for i := len(blocks) - 1; i >= 0; i-- {
		block := blocks[i]
		markup, ok := replacements[block.ID]
		if !ok || !block.IsLive() {
			continue
		}
		if block.Start < 0 || block.End <= block.Start || block.End > len(body) {
			continue
		}

		src := block.Source
		if src != "" && !strings.HasSuffix(src, "\n") {
			src += "\n"
		}
		fence := fenceFor(src)
		preview := fmt.Sprintf("<div class=\"preview-container\">%s</div>\n\n%s%s\n%s%s",
			markup, fence, block.Language, src, fence)
		body = body[:block.Start] + preview + body[block.End:]
	}
	return body
}

// fenceFor returns a backtick fence longer than any backtick run in src.
func fenceFor(src string) string {
	longest, run := 0, 0
	for _, c := range src {
		if c == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}
