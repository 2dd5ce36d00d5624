package testutil

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// creationGap separates consecutive files so birth times differ even on
// filesystems with coarse timestamps.
const creationGap = 10 * time.Millisecond

func CreateFile(t *testing.T, path, content string) {
	t.Helper()
	createFileBytes(t, path, []byte(content), 0o644, false, time.Time{})
}

func CreateFileWithModTime(t *testing.T, path, content string, modTime time.Time) {
	t.Helper()
	createFileBytes(t, path, []byte(content), 0o600, true, modTime)
}

// CreateTree creates every file in files (relative path -> content) under
// root, in lexical path order.
func CreateTree(t *testing.T, root string, files map[string]string) {
	t.Helper()

	paths := make([]string, 0, len(files))
	for rel := range files {
		paths = append(paths, rel)
	}
	sort.Strings(paths)

	for _, rel := range paths {
		CreateFile(t, filepath.Join(root, filepath.FromSlash(rel)), files[rel])
	}
}

// CreateFilesInOrder creates names in dir one after another with increasing
// modification times, so both birth and modification time follow the slice
// order. Each file's content is its own name.
func CreateFilesInOrder(t *testing.T, dir string, names []string) {
	t.Helper()

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i, name := range names {
		CreateFileWithModTime(t, filepath.Join(dir, name), name, base.Add(time.Duration(i)*time.Second))
		time.Sleep(creationGap)
	}
}

// ReadFile returns the content of path as a string.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

// ListNames returns the sorted entry names of dir.
func ListNames(t *testing.T, dir string) []string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	return names
}

func createFileBytes(t *testing.T, path string, content []byte, mode os.FileMode, setModTime bool, modTime time.Time) {
	t.Helper()

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	require.NoError(t, err)

	err = os.WriteFile(path, content, mode)
	require.NoError(t, err)

	if !setModTime {
		return
	}

	err = os.Chtimes(path, modTime, modTime)
	require.NoError(t, err)
}
