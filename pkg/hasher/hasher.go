// Package hasher provides SHA256 content hashing and name-independent tree
// digests, used to prove that renaming never touches file bytes.
package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// ComputeHash computes the full SHA256 hash of a file.
func ComputeHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}

// TreeDigest hashes the shape and content of the tree rooted at path while
// ignoring every entry name. A file digests to its content hash, a directory
// to the sorted digests of its children. Renaming entries leaves the digest
// unchanged; adding, removing or modifying anything changes it.
func TreeDigest(path string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return "", err
	}

	switch {
	case info.IsDir():
		return dirDigest(path)
	case info.Mode()&os.ModeSymlink != 0:
		target, err := os.Readlink(path)
		if err != nil {
			return "", err
		}
		return digest("l", target), nil
	default:
		contentHash, err := ComputeHash(path)
		if err != nil {
			return "", err
		}
		return digest("f", contentHash), nil
	}
}

func dirDigest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	children := make([]string, 0, len(entries))
	for _, entry := range entries {
		child, err := TreeDigest(filepath.Join(dir, entry.Name()))
		if err != nil {
			return "", err
		}
		children = append(children, child)
	}
	sort.Strings(children)

	return digest("d", children...), nil
}

func digest(kind string, parts ...string) string {
	hash := sha256.New()
	fmt.Fprintf(hash, "%s:%d\n", kind, len(parts))
	for _, part := range parts {
		fmt.Fprintf(hash, "%s\n", part)
	}

	return hex.EncodeToString(hash.Sum(nil))
}
