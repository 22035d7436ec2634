package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/livedocs/internal/scanner"
)

func TestReactAdapterTransform(t *testing.T) {
	adapter := NewReactAdapter()
	assert.Equal(t, "react", adapter.Name())
	assert.Equal(t, []string{"tsx", "jsx"}, adapter.Extensions())

	src := `const variantClasses = { solid: 'bg-black' }
export function Chip({ variant }) { return null }`

	artifact, err := adapter.Transform(src, "preview-block-7")
	require.NoError(t, err)
	assert.Equal(t, "preview-block-7", artifact.TagName)
	assert.Contains(t, artifact.Code, "class PreviewBlock7 extends HTMLElement")
	assert.Contains(t, artifact.Code, "generated from Chip")
	assert.Equal(t, []string{"bg-black", "opacity-50", "pointer-events-none", "cursor-not-allowed"}, artifact.ClassesUsed)
}

func TestReactAdapterTransformMissingVariants(t *testing.T) {
	_, err := NewReactAdapter().Transform("<Button />", "preview-block-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, scanner.ErrMissingVariants)
	assert.Contains(t, err.Error(), "<preview-block-1>")
}
