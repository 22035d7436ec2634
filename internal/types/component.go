// Package types provides the data model shared by the scanner, registry,
// generator and build packages. It lives on its own to avoid circular
// dependencies between them.
package types

import (
	"strings"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ClassEntry is a single key/class-string pair from a lookup table.
type ClassEntry struct {
	Key     string
	Classes string
}

// ClassTable is an ordered mapping from a variant or size key to its class
// string. Keys are unique; setting an existing key replaces the value in place.
// The zero value is ready to use.
type ClassTable struct {
	m *orderedmap.OrderedMap[string, string]
}

// NewClassTable builds a table from alternating key/value pairs. It exists
// mainly to keep tests short.
func NewClassTable(pairs ...string) *ClassTable {
	t := &ClassTable{}
	for i := 0; i+1 < len(pairs); i += 2 {
		t.Set(pairs[i], pairs[i+1])
	}
	return t
}

// Set inserts or replaces a key.
func (t *ClassTable) Set(key, classes string) {
	if t.m == nil {
		t.m = orderedmap.New[string, string]()
	}
	t.m.Set(key, classes)
}

// Get returns the classes for key.
func (t *ClassTable) Get(key string) (string, bool) {
	if t == nil || t.m == nil {
		return "", false
	}
	return t.m.Get(key)
}

// Len returns the number of keys.
func (t *ClassTable) Len() int {
	if t == nil || t.m == nil {
		return 0
	}
	return t.m.Len()
}

// Entries returns the entries in insertion order.
func (t *ClassTable) Entries() []ClassEntry {
	if t.Len() == 0 {
		return nil
	}
	out := make([]ClassEntry, 0, t.m.Len())
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, ClassEntry{Key: pair.Key, Classes: pair.Value})
	}
	return out
}

// Keys returns the keys in insertion order.
func (t *ClassTable) Keys() []string {
	if t.Len() == 0 {
		return nil
	}
	keys := make([]string, 0, t.m.Len())
	for pair := t.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// First returns the first key, or fallback when the table is empty.
func (t *ClassTable) First(fallback string) string {
	if t.Len() == 0 {
		return fallback
	}
	return t.m.Oldest().Key
}

// ComponentStructure is the styling and attribute model recovered from a
// component's source text.
type ComponentStructure struct {
	// Name is the component identifier (e.g. "Button")
	Name string
	// Variants maps a variant key to its class string; never empty
	Variants *ClassTable
	// Sizes maps a size key to its class string; may be empty
	Sizes *ClassTable
	// BaseClasses are applied to every rendering
	BaseClasses string
	// DisabledClasses are applied when disabled or loading
	DisabledClasses string
	// DefaultVariant is the first variant key, or "default"
	DefaultVariant string
	// DefaultSize is the first size key, or "default"
	DefaultSize string
	// ObservedAttributes is an ordered set of attribute names
	ObservedAttributes []string
}

// ClassesUsed returns every class token referenced by the structure,
// deduplicated in first-seen order: base, variants, sizes, disabled.
func (s *ComponentStructure) ClassesUsed() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(classes string) {
		for _, c := range strings.Fields(classes) {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}

	add(s.BaseClasses)
	for _, e := range s.Variants.Entries() {
		add(e.Classes)
	}
	for _, e := range s.Sizes.Entries() {
		add(e.Classes)
	}
	add(s.DisabledClasses)

	return out
}

// CachedComponent is a registry entry.
type CachedComponent struct {
	Name       string
	SourcePath string
	Structure  *ComponentStructure
	RawSource  string
	LastMod    time.Time
}

// Artifact is the generated custom element for one component and tag name.
type Artifact struct {
	TagName     string
	Code        string
	ClassesUsed []string
	Attributes  []string
}

// EventType represents the type of component change event.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeUpdated EventType = "updated"
	EventTypeRemoved EventType = "removed"
)

// ComponentEvent represents a change in the component registry, used for
// real-time notifications to watchers like the development server.
type ComponentEvent struct {
	// Type indicates the kind of change (added, updated, removed)
	Type EventType
	// Name is the case-folded registry key
	Name string
	// Component contains the entry (nil for removed events)
	Component *CachedComponent
	// Timestamp records when the event occurred
	Timestamp time.Time
}
