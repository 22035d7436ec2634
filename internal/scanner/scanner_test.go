package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buttonSource = `import React from 'react';

type Variant = 'primary' | 'secondary' | 'ghost';

interface ButtonProps {
  // visual style
  variant?: Variant;
  size?: 'sm' | 'md' | 'lg';
  disabled?: boolean;
  loading?: boolean;
  iconOnly?: boolean;
  className?: string;
  children?: React.ReactNode;
}

const variantClasses: Record<Variant, string> = {
  primary: 'bg-blue-600 text-white hover:bg-blue-700',
  secondary: "bg-gray-100 text-gray-900",
  ghost: 'bg-transparent',
};

const sizeClasses = {
  sm: 'px-2 py-1 text-sm',
  md: 'px-4 py-2',
  lg: 'px-6 py-3 text-lg',
};

const baseClasses =
  'inline-flex items-center ' +
  'rounded-md   font-medium';

const disabledClasses = 'opacity-40 cursor-not-allowed';

export function Button({ variant = 'primary', size = 'md', disabled, loading, iconOnly, className, ...rest }: ButtonProps) {
  return <button className={className} {...rest} />;
}
`

func TestExtractButton(t *testing.T) {
	s, err := Extract(buttonSource)
	require.NoError(t, err)

	assert.Equal(t, "Button", s.Name)
	assert.Equal(t, []string{"primary", "secondary", "ghost"}, s.Variants.Keys())
	secondary, _ := s.Variants.Get("secondary")
	assert.Equal(t, "bg-gray-100 text-gray-900", secondary)
	assert.Equal(t, []string{"sm", "md", "lg"}, s.Sizes.Keys())
	assert.Equal(t, "primary", s.DefaultVariant)
	assert.Equal(t, "sm", s.DefaultSize)
	assert.Equal(t, "inline-flex items-center rounded-md font-medium", s.BaseClasses)
	assert.Equal(t, "opacity-40 cursor-not-allowed", s.DisabledClasses)
	assert.Equal(t, []string{"variant", "size", "disabled", "loading", "iconOnly"}, s.ObservedAttributes)
}

func TestExtractDefaults(t *testing.T) {
	s, err := Extract(`const variantClasses = { default: 'a b', secondary: 'c' }`)
	require.NoError(t, err)

	assert.Equal(t, DefaultName, s.Name)
	assert.Equal(t, "default", s.DefaultVariant)
	assert.Equal(t, []string{"default", "secondary"}, s.Variants.Keys())
	assert.Equal(t, 0, s.Sizes.Len())
	assert.Equal(t, DefaultKey, s.DefaultSize)
	assert.Empty(t, s.BaseClasses)
	assert.Equal(t, DefaultDisabledClasses, s.DisabledClasses)
	assert.Equal(t, []string{"variant"}, s.ObservedAttributes)
}

func TestExtractMissingVariants(t *testing.T) {
	sources := []string{
		"",
		"export function Button() { return null }",
		"const sizeClasses = { sm: 'x' }",
		"const variantClasses = { }",
		"const variantClasses = { primary: bg }",
	}

	for _, src := range sources {
		_, err := Extract(src)
		assert.ErrorIs(t, err, ErrMissingVariants, src)
	}
}

func TestExtractMergesDuplicateDeclarations(t *testing.T) {
	src := `
const variantClasses = { primary: 'a', secondary: 'b' };
const variantClasses = { primary: 'c', tertiary: 'd' };
`
	s, err := Extract(src)
	require.NoError(t, err)

	assert.Equal(t, []string{"primary", "secondary", "tertiary"}, s.Variants.Keys())
	v, _ := s.Variants.Get("primary")
	assert.Equal(t, "c", v)
}

func TestExtractQuotedKeys(t *testing.T) {
	s, err := Extract(`const variantClasses = { 'primary': "x", "danger-ish": 'y' }`)
	require.NoError(t, err)
	assert.Equal(t, []string{"primary", "danger-ish"}, s.Variants.Keys())
}

func TestExtractSingleLiteralBase(t *testing.T) {
	s, err := Extract("const variantClasses = { a: 'x' }\nconst baseClasses = \"flex  gap-2\"\n")
	require.NoError(t, err)
	assert.Equal(t, "flex gap-2", s.BaseClasses)
}

func TestExtractDisabledCls(t *testing.T) {
	s, err := Extract("const variantClasses = { a: 'x' }\nlet disabledCls = 'is-disabled'")
	require.NoError(t, err)
	assert.Equal(t, "is-disabled", s.DisabledClasses)
}

func TestExtractTypeAliasProps(t *testing.T) {
	src := `
type CardProps = {
  tone?: string
  elevated: boolean
  style?: object
}
const variantClasses = { flat: 'x' }
const Card = ({ tone, elevated, style }: CardProps) => null
`
	s, err := Extract(src)
	require.NoError(t, err)

	assert.Equal(t, "Card", s.Name)
	assert.Equal(t, []string{"variant", "tone", "elevated"}, s.ObservedAttributes)
}

func TestExtractDestructuredOnly(t *testing.T) {
	src := `
const variantClasses = { solid: 'x' }
export const Badge = ({ tone = 'info', pill, ...others }) => null
`
	s, err := Extract(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"variant", "tone", "pill"}, s.ObservedAttributes)
}
