package files

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func collect(t *testing.T, root string) []string {
	t.Helper()
	var got []string
	err := Walk(root, func(path string, info fs.FileInfo) error {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestWalkOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b.md"), "b")
	writeFile(t, filepath.Join(root, "a", "z.md"), "z")
	writeFile(t, filepath.Join(root, "a", "y.md"), "y")

	assert.Equal(t, []string{"a/y.md", "a/z.md", "b.md"}, collect(t, root))
}

func TestWalkFollowsSymlinksWithoutLooping(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	root := t.TempDir()
	shared := t.TempDir()
	writeFile(t, filepath.Join(shared, "shared.md"), "s")
	writeFile(t, filepath.Join(root, "own.md"), "o")

	require.NoError(t, os.Symlink(shared, filepath.Join(root, "linked")))
	require.NoError(t, os.Symlink(root, filepath.Join(root, "loop")))

	assert.Equal(t, []string{"linked/shared.md", "own.md"}, collect(t, root))
}

func TestWalkMissingRoot(t *testing.T) {
	err := Walk(filepath.Join(t.TempDir(), "nope"), func(string, fs.FileInfo) error { return nil })
	assert.Error(t, err)
}

func TestExtAndStem(t *testing.T) {
	assert.Equal(t, "tsx", Ext("components/Button.tsx"))
	assert.Equal(t, "", Ext("Makefile"))
	assert.Equal(t, "Button", Stem("components/Button.tsx"))
	assert.Equal(t, "button.test", Stem("button.test.tsx"))
}

func TestWalkerSkipsUnreadableSubdirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.md"), "a")
	writeFile(t, filepath.Join(root, "locked", "hidden.md"), "h")
	writeFile(t, filepath.Join(root, "open", "b.md"), "b")

	locked := filepath.Join(root, "locked")
	var skipped []string
	w := &Walker{
		Skipped: func(dir string, err error) {
			skipped = append(skipped, dir)
			assert.ErrorIs(t, err, fs.ErrPermission)
		},
		readDir: func(name string) ([]os.DirEntry, error) {
			if name == locked {
				return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
			}
			return os.ReadDir(name)
		},
	}

	var got []string
	err := w.Walk(root, func(path string, _ fs.FileInfo) error {
		rel, err := filepath.Rel(root, path)
		require.NoError(t, err)
		got = append(got, filepath.ToSlash(rel))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md", "open/b.md"}, got)
	assert.Equal(t, []string{locked}, skipped)
}

func TestWalkerRootFailureIsReturned(t *testing.T) {
	root := t.TempDir()
	w := &Walker{readDir: func(string) ([]os.DirEntry, error) {
		return nil, fs.ErrPermission
	}}

	err := w.Walk(root, func(string, fs.FileInfo) error { return nil })
	assert.ErrorIs(t, err, fs.ErrPermission)
}
