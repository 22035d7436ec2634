// Package registry indexes a component source tree by component name.
//
// A scan walks the tree, runs every candidate file through the framework
// adapter and replaces the whole index in one step. Lookups are
// case-insensitive. Watchers receive added, updated and removed events
// computed by diffing consecutive scans, which the dev server uses to push
// regenerated elements to browsers.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/sahilm/fuzzy"

	"github.com/conneroisu/livedocs/internal/adapters"
	"github.com/conneroisu/livedocs/internal/files"
	"github.com/conneroisu/livedocs/internal/generator"
	"github.com/conneroisu/livedocs/internal/logging"
	"github.com/conneroisu/livedocs/internal/scanner"
	"github.com/conneroisu/livedocs/internal/types"
)

var (
	// ErrComponentNotFound is returned when a lookup misses.
	ErrComponentNotFound = errors.New("component not found")
	// ErrDirectoryNotFound is returned when the scan root does not exist.
	ErrDirectoryNotFound = errors.New("component directory not found")
)

// DefaultExcludePatterns match test, spec, story and index files.
var DefaultExcludePatterns = []string{"*.test.*", "*.spec.*", "*.stories.*", "index.*"}

// Config controls which files a scan considers.
type Config struct {
	// Extensions without the leading dot. Empty means the adapter's list.
	Extensions []string
	// ExcludePatterns are glob patterns matched against lowercased base
	// names. Nil means DefaultExcludePatterns.
	ExcludePatterns []string
}

// ComponentRegistry manages all discovered components
type ComponentRegistry struct {
	components map[string]*types.CachedComponent
	mutex      sync.RWMutex
	watchers   []chan types.ComponentEvent

	adapter    adapters.FrameworkAdapter
	extensions map[string]bool
	exclude    []glob.Glob
	logger     logging.Logger
}

// NewComponentRegistry creates an empty registry.
func NewComponentRegistry(cfg Config, adapter adapters.FrameworkAdapter, logger logging.Logger) (*ComponentRegistry, error) {
	if adapter == nil {
		adapter = adapters.NewReactAdapter()
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = adapter.Extensions()
	}
	extensions := make(map[string]bool, len(exts))
	for _, ext := range exts {
		extensions[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	patterns := cfg.ExcludePatterns
	if patterns == nil {
		patterns = DefaultExcludePatterns
	}
	exclude := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		exclude = append(exclude, g)
	}

	return &ComponentRegistry{
		components: make(map[string]*types.CachedComponent),
		watchers:   make([]chan types.ComponentEvent, 0),
		adapter:    adapter,
		extensions: extensions,
		exclude:    exclude,
		logger:     logger.WithComponent("registry"),
	}, nil
}

// IsCandidate reports whether path would be considered by a scan.
func (r *ComponentRegistry) IsCandidate(path string) bool {
	if !r.extensions[strings.ToLower(files.Ext(path))] {
		return false
	}
	base := strings.ToLower(filepath.Base(path))
	for _, g := range r.exclude {
		if g.Match(base) {
			return false
		}
	}
	return true
}

// Scan rebuilds the index from root and returns the number of components.
func (r *ComponentRegistry) Scan(ctx context.Context, root string) (int, error) {
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrDirectoryNotFound, root)
		}
		return 0, fmt.Errorf("failed to stat component directory: %w", err)
	}

	index := make(map[string]*types.CachedComponent)
	walker := &files.Walker{Skipped: func(dir string, err error) {
		r.logger.Debug(ctx, "Skipping unreadable directory", "dir", dir, "error", err.Error())
	}}
	err := walker.Walk(root, func(path string, info fs.FileInfo) error {
		if !r.IsCandidate(path) {
			return nil
		}

		component, err := r.load(path, info)
		if err != nil {
			if errors.Is(err, scanner.ErrMissingVariants) {
				r.logger.Debug(ctx, "Skipping file without variant classes", "path", path)
			} else {
				r.logger.Debug(ctx, "Skipping unreadable component file", "path", path, "error", err.Error())
			}
			return nil
		}

		key := strings.ToLower(component.Name)
		if prev, ok := index[key]; ok {
			r.logger.Debug(ctx, "Component name collision, keeping last scanned",
				"name", component.Name, "previous", prev.SourcePath, "path", path)
		}
		index[key] = component
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan components: %w", err)
	}

	r.replace(index)
	r.logger.Info(ctx, "Component scan completed", "root", root, "components", len(index))

	return len(index), nil
}

func (r *ComponentRegistry) load(path string, info fs.FileInfo) (*types.CachedComponent, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	source := string(content)

	structure, err := r.adapter.Extract(source)
	if err != nil {
		return nil, err
	}
	if structure.Name == "" || structure.Name == scanner.DefaultName {
		structure.Name = files.Stem(path)
	}

	return &types.CachedComponent{
		Name:       structure.Name,
		SourcePath: path,
		Structure:  structure,
		RawSource:  source,
		LastMod:    info.ModTime(),
	}, nil
}

// replace swaps in a new index and notifies watchers of the differences.
func (r *ComponentRegistry) replace(index map[string]*types.CachedComponent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := time.Now()
	var events []types.ComponentEvent

	for _, key := range sortedKeys(index) {
		next := index[key]
		prev, existed := r.components[key]
		switch {
		case !existed:
			events = append(events, types.ComponentEvent{Type: types.EventTypeAdded, Name: key, Component: next, Timestamp: now})
		case prev.RawSource != next.RawSource || prev.SourcePath != next.SourcePath:
			events = append(events, types.ComponentEvent{Type: types.EventTypeUpdated, Name: key, Component: next, Timestamp: now})
		}
	}
	for _, key := range sortedKeys(r.components) {
		if _, ok := index[key]; !ok {
			events = append(events, types.ComponentEvent{Type: types.EventTypeRemoved, Name: key, Timestamp: now})
		}
	}

	r.components = index

	for _, event := range events {
		for _, watcher := range r.watchers {
			select {
			case watcher <- event:
			default:
				// Skip if channel is full
			}
		}
	}
}

func sortedKeys(m map[string]*types.CachedComponent) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get retrieves a component by name, case-insensitively.
func (r *ComponentRegistry) Get(name string) (*types.CachedComponent, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	component, exists := r.components[strings.ToLower(name)]
	return component, exists
}

// Contains reports whether a component is registered under name.
func (r *ComponentRegistry) Contains(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the display names of all components, sorted.
func (r *ComponentRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.components))
	for _, c := range r.components {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}

// GetAll returns all components sorted by name.
func (r *ComponentRegistry) GetAll() []*types.CachedComponent {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*types.CachedComponent, 0, len(r.components))
	for _, key := range sortedKeys(r.components) {
		result = append(result, r.components[key])
	}
	return result
}

// Count returns the number of registered components
func (r *ComponentRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.components)
}

// GenerateArtifact generates the custom element for a registered component.
func (r *ComponentRegistry) GenerateArtifact(name, tag string) (*types.Artifact, error) {
	component, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrComponentNotFound, name)
	}
	return generator.Artifact(component.Structure, tag), nil
}

// Suggest returns up to limit registered names that fuzzily match name.
func (r *ComponentRegistry) Suggest(name string, limit int) []string {
	names := r.Names()
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}

	matches := fuzzy.Find(strings.ToLower(name), lowered)
	var out []string
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, names[m.Index])
	}
	return out
}

// Watch returns a channel that receives component events
func (r *ComponentRegistry) Watch() <-chan types.ComponentEvent {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	ch := make(chan types.ComponentEvent, 100)
	r.watchers = append(r.watchers, ch)
	return ch
}

// UnWatch removes a watcher channel and closes it
func (r *ComponentRegistry) UnWatch(ch <-chan types.ComponentEvent) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for i, watcher := range r.watchers {
		if watcher == ch {
			close(watcher)
			r.watchers = append(r.watchers[:i], r.watchers[i+1:]...)
			break
		}
	}
}
