package hasher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"namefmt/internal/testutil"
)

func TestComputeHash(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	testutil.CreateFile(t, path, "hello")

	hash, err := ComputeHash(path)
	require.NoError(t, err)

	// sha256("hello")
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", hash)
}

func TestComputeHash_MissingFile(t *testing.T) {
	_, err := ComputeHash(filepath.Join(t.TempDir(), "missing"))

	assert.Error(t, err)
}

func TestTreeDigest_IgnoresNames(t *testing.T) {
	root := t.TempDir()
	testutil.CreateFile(t, filepath.Join(root, "TEST DIR", "TEST FILE"), "one")
	testutil.CreateFile(t, filepath.Join(root, "TEST DIR", "OTHER"), "two")

	before, err := TreeDigest(root)
	require.NoError(t, err)

	require.NoError(t, os.Rename(filepath.Join(root, "TEST DIR", "TEST FILE"), filepath.Join(root, "TEST DIR", "renamed")))
	require.NoError(t, os.Rename(filepath.Join(root, "TEST DIR"), filepath.Join(root, "test_dir")))

	after, err := TreeDigest(root)
	require.NoError(t, err)

	assert.Equal(t, before, after)
}

func TestTreeDigest_DetectsContentChange(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "file")
	testutil.CreateFile(t, path, "one")

	before, err := TreeDigest(root)
	require.NoError(t, err)

	testutil.CreateFile(t, path, "changed")

	after, err := TreeDigest(root)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestTreeDigest_DetectsStructureChange(t *testing.T) {
	root := t.TempDir()
	testutil.CreateFile(t, filepath.Join(root, "a", "file"), "one")

	before, err := TreeDigest(root)
	require.NoError(t, err)

	// Same content, moved one level up.
	require.NoError(t, os.Rename(filepath.Join(root, "a", "file"), filepath.Join(root, "file")))

	after, err := TreeDigest(root)
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestTreeDigest_DetectsLostFile(t *testing.T) {
	root := t.TempDir()
	testutil.CreateFile(t, filepath.Join(root, "a"), "same")
	testutil.CreateFile(t, filepath.Join(root, "b"), "same")

	before, err := TreeDigest(root)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "b")))

	after, err := TreeDigest(root)
	require.NoError(t, err)

	assert.NotEqual(t, before, after, "duplicate content still counts per file")
}

func TestTreeDigest_SingleFile(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	testutil.CreateFile(t, a, "same")
	testutil.CreateFile(t, b, "same")

	da, err := TreeDigest(a)
	require.NoError(t, err)
	db, err := TreeDigest(b)
	require.NoError(t, err)

	assert.Equal(t, da, db)
}
