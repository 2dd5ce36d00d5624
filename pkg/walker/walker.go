// Package walker enumerates rename candidates under a set of root targets.
package walker

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"namefmt/pkg/pathclass"
)

// ErrTraversal wraps filesystem failures hit while enumerating candidates.
var ErrTraversal = errors.New("traversal failed")

// Options configures the walker behavior.
type Options struct {
	// Recursive descends into subdirectories of directory roots.
	Recursive bool
	// Exclude prunes directories whose path contains an excluded segment.
	Exclude pathclass.ExclusionSet
}

// Walker lists directories and files to consider for renaming.
type Walker struct {
	recursive bool
	exclude   pathclass.ExclusionSet
}

// New creates a Walker with the given options.
func New(opts Options) *Walker {
	return &Walker{
		recursive: opts.Recursive,
		exclude:   opts.Exclude,
	}
}

// Directories returns the directories to rename, children before parents, so
// renaming an entry never invalidates a path that is still pending.
func (w *Walker) Directories(roots []string) ([]string, error) {
	var dirs []string

	for _, root := range roots {
		if w.exclude.Matches(root) {
			continue
		}

		if w.recursive && pathclass.IsDir(root) {
			below, err := w.subdirsBottomUp(root)
			if err != nil {
				return nil, err
			}
			dirs = append(dirs, below...)
		}

		if pathclass.IsDir(root) {
			dirs = append(dirs, root)
		}
	}

	return unique(dirs), nil
}

func (w *Walker) subdirsBottomUp(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrTraversal, dir, err)
	}

	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		child := filepath.Join(dir, entry.Name())
		if w.exclude.Matches(child) {
			continue
		}

		below, err := w.subdirsBottomUp(child)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, below...)
		dirs = append(dirs, child)
	}

	return dirs, nil
}

// Files returns the files to rename. Without recursion only roots that are
// themselves files are returned.
func (w *Walker) Files(roots []string) ([]string, error) {
	var files []string

	for _, root := range roots {
		if w.exclude.Matches(root) {
			continue
		}

		if pathclass.IsFile(root) {
			files = append(files, root)
			continue
		}

		if !w.recursive || !pathclass.IsDir(root) {
			continue
		}

		found, err := w.filesTopDown(root)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	return unique(files), nil
}

func (w *Walker) filesTopDown(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && w.exclude.Matches(path) {
				return filepath.SkipDir
			}
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %w", ErrTraversal, root, err)
	}

	return files, nil
}

// unique drops repeated paths, keeping the first occurrence. Overlapping
// roots (e.g. "a" and "a/b") would otherwise list an entry twice.
func unique(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, path := range paths {
		key := filepath.Clean(path)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, path)
	}

	return out
}
