// Package pathclass provides stateless predicates over filesystem paths.
package pathclass

import (
	"os"
	"path/filepath"
	"strings"
)

// IsFile reports whether path exists and is not a directory.
func IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Exists reports whether anything (including a dangling symlink) lives at path.
func Exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// Extension returns the lower-cased text after the last '.' in name.
// ok is false when name has no '.' at all.
func Extension(name string) (ext string, ok bool) {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return "", false
	}

	return strings.ToLower(name[idx+1:]), true
}

// ExclusionSet holds directory names that must never be renamed or entered.
type ExclusionSet struct {
	names map[string]bool
}

// NewExclusionSet builds a set from names. Empty names are ignored.
func NewExclusionSet(names []string) ExclusionSet {
	s := ExclusionSet{names: make(map[string]bool, len(names))}
	for _, name := range names {
		if name != "" {
			s.names[name] = true
		}
	}

	return s
}

// Len returns the number of excluded names.
func (s ExclusionSet) Len() int {
	return len(s.names)
}

// Matches reports whether any segment of path equals an excluded name.
func (s ExclusionSet) Matches(path string) bool {
	if len(s.names) == 0 {
		return false
	}

	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if s.names[segment] {
			return true
		}
	}

	return false
}
