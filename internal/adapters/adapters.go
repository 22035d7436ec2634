// Package adapters connects a component framework's source conventions to
// the scanner and generator. The build and registry depend on the
// FrameworkAdapter interface so other source dialects can be added later.
package adapters

import (
	"fmt"

	"github.com/conneroisu/livedocs/internal/generator"
	"github.com/conneroisu/livedocs/internal/scanner"
	"github.com/conneroisu/livedocs/internal/types"
)

// FrameworkAdapter extracts component structure from source text and turns
// it into a custom element artifact.
type FrameworkAdapter interface {
	// Name identifies the adapter in logs.
	Name() string
	// Extensions lists the file extensions (without dot) of component sources.
	Extensions() []string
	// Extract recovers the component structure from source.
	Extract(source string) (*types.ComponentStructure, error)
	// Transform extracts and generates the artifact under tag in one step.
	Transform(source, tag string) (*types.Artifact, error)
}

// ReactAdapter handles TSX/JSX components.
type ReactAdapter struct{}

// NewReactAdapter returns the TSX/JSX adapter.
func NewReactAdapter() *ReactAdapter {
	return &ReactAdapter{}
}

func (a *ReactAdapter) Name() string { return "react" }

func (a *ReactAdapter) Extensions() []string {
	return []string{"tsx", "jsx"}
}

func (a *ReactAdapter) Extract(source string) (*types.ComponentStructure, error) {
	return scanner.Extract(source)
}

func (a *ReactAdapter) Transform(source, tag string) (*types.Artifact, error) {
	structure, err := a.Extract(source)
	if err != nil {
		return nil, fmt.Errorf("failed to transform component into <%s>: %w", tag, err)
	}
	return generator.Artifact(structure, tag), nil
}

// Ensure ReactAdapter implements FrameworkAdapter
var _ FrameworkAdapter = (*ReactAdapter)(nil)
