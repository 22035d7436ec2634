package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	testCases := []struct {
		kind     Kind
		expected string
	}{
		{DocChanged, "doc_changed"},
		{ComponentChanged, "component_changed"},
		{Created, "created"},
		{Deleted, "deleted"},
		{Modified, "modified"},
		{Kind(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.kind.String())
		})
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		path string
		op   fsnotify.Op
		want Kind
		ok   bool
	}{
		{"docs/index.md", fsnotify.Write, DocChanged, true},
		{"docs/button.MDX", fsnotify.Write, DocChanged, true},
		{"components/Button.tsx", fsnotify.Write, ComponentChanged, true},
		{"components/util.js", fsnotify.Write, ComponentChanged, true},
		{"styles/theme.css", fsnotify.Write, Modified, true},
		{"docs/new.md", fsnotify.Create, Created, true},
		{"docs/old.md", fsnotify.Remove, Deleted, true},
		{"docs/moved.md", fsnotify.Rename, Deleted, true},
		{"docs/index.md", fsnotify.Chmod, 0, false},
		{"docs/index.md", fsnotify.Create | fsnotify.Write, Created, true},
	}

	for _, tc := range testCases {
		t.Run(tc.path+" "+tc.op.String(), func(t *testing.T) {
			kind, ok := Classify(tc.path, tc.op)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, kind)
			}
		})
	}
}

func TestIgnored(t *testing.T) {
	fw, err := NewFileWatcher(DefaultDebounce, nil)
	require.NoError(t, err)
	defer fw.Stop()

	assert.True(t, fw.Ignored("/repo/.git/HEAD"))
	assert.True(t, fw.Ignored("/repo/components/node_modules/react/index.js"))
	assert.True(t, fw.Ignored("/repo/docs/.index.md.swp"))
	assert.True(t, fw.Ignored("/repo/docs/index.md~"))
	assert.True(t, fw.Ignored("/repo/dist/.livedocs-1234"))
	assert.False(t, fw.Ignored("/repo/docs/index.md"))

	require.NoError(t, fw.AddIgnorePatterns("**/drafts/**"))
	assert.True(t, fw.Ignored("/repo/docs/drafts/wip.md"))
}

func TestCoalesce(t *testing.T) {
	events := Coalesce([]ChangeEvent{
		{Kind: Created, Path: "b.md"},
		{Kind: DocChanged, Path: "a.md"},
		{Kind: DocChanged, Path: "b.md"},
	})

	assert.Equal(t, []ChangeEvent{
		{Kind: DocChanged, Path: "a.md"},
		{Kind: DocChanged, Path: "b.md"},
	}, events)
}

func TestDebouncerBatches(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.start(ctx)

	d.Add(ChangeEvent{Kind: DocChanged, Path: "a.md"})
	d.Add(ChangeEvent{Kind: DocChanged, Path: "a.md"})
	d.Add(ChangeEvent{Kind: ComponentChanged, Path: "Button.tsx"})

	select {
	case batch := <-d.Output():
		assert.Len(t, batch, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced batch")
	}
}

func TestExtensionFilter(t *testing.T) {
	filter := ExtensionFilter("md", ".mdx", "tsx")
	assert.True(t, filter("a.md"))
	assert.True(t, filter("a.MDX"))
	assert.True(t, filter("Button.tsx"))
	assert.False(t, filter("a.css"))
	assert.False(t, filter("Makefile"))
}

func TestAddPathMissing(t *testing.T) {
	fw, err := NewFileWatcher(DefaultDebounce, nil)
	require.NoError(t, err)
	defer fw.Stop()

	assert.Error(t, fw.AddPath(filepath.Join(t.TempDir(), "missing")))
}

func TestFileWatcherDeliversChanges(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "guides"), 0o755))

	fw, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	require.NoError(t, fw.AddRecursive(root))

	var mu sync.Mutex
	var received []ChangeEvent
	fw.AddHandler(func(_ context.Context, events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, events...)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))

	time.Sleep(100 * time.Millisecond)
	target := filepath.Join(root, "guides", "setup.md")
	require.NoError(t, os.WriteFile(target, []byte("# Setup"), 0o644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range received {
			if e.Path == target {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}
