// Package files walks directory trees for the registry and the page
// discovery, following symbolic links without looping on cycles.
package files

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// WalkFunc is called for every regular file reached by Walk. path is the
// path through the walked tree, not the resolved link target.
type WalkFunc func(path string, info fs.FileInfo) error

// Walker walks directory trees. Subdirectories that cannot be resolved or
// read are skipped; only a failure on the root is returned.
type Walker struct {
	// Skipped, if set, is called for every subdirectory that was skipped.
	Skipped func(dir string, err error)

	readDir func(name string) ([]os.DirEntry, error)
}

// Walk visits every regular file under root in lexical order, descending
// into symlinked directories once per resolved target.
func Walk(root string, fn WalkFunc) error {
	return (&Walker{}).Walk(root, fn)
}

// Walk is the package level Walk with w's skip reporting.
func (w *Walker) Walk(root string, fn WalkFunc) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	visited := make(map[string]bool)
	return w.walkDir(root, true, visited, fn)
}

func (w *Walker) walkDir(dir string, root bool, visited map[string]bool, fn WalkFunc) error {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return w.skip(dir, root, fmt.Errorf("failed to resolve %s: %w", dir, err))
	}
	if visited[real] {
		return nil
	}
	visited[real] = true

	readDir := w.readDir
	if readDir == nil {
		readDir = os.ReadDir
	}
	entries, err := readDir(dir)
	if err != nil {
		return w.skip(dir, root, fmt.Errorf("failed to read directory %s: %w", dir, err))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// os.Stat follows links; broken links are skipped.
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		if info.IsDir() {
			if err := w.walkDir(path, false, visited, fn); err != nil {
				return err
			}
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		if err := fn(path, info); err != nil {
			return err
		}
	}

	return nil
}

func (w *Walker) skip(dir string, root bool, err error) error {
	if root {
		return err
	}
	if w.Skipped != nil {
		w.Skipped(dir, err)
	}
	return nil
}

// Ext returns the extension of path without the leading dot.
func Ext(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return ""
	}
	return ext[1:]
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
