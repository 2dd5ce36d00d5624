// Package sidecar pairs image files with their companion metadata files
// (e.g. "photo.jpg" and "photo.jpg.pp3") so both are renamed in lockstep.
package sidecar

import (
	"path/filepath"
	"strings"

	"namefmt/pkg/pathclass"
)

// Entry is one unit of renaming: an independent file plus the companions
// whose names derive from it.
type Entry struct {
	Path       string
	Companions []Companion
}

// Companion is a file named after its owner plus a fixed suffix.
type Companion struct {
	Path   string
	Suffix string
}

// Pairer detects companion files on disk.
type Pairer struct {
	images   map[string]bool
	suffixes []string
}

// New creates a Pairer. imageExts are extensions without the dot; matching is
// case-insensitive.
func New(imageExts, suffixes []string) *Pairer {
	p := &Pairer{
		images:   make(map[string]bool, len(imageExts)),
		suffixes: append([]string(nil), suffixes...),
	}
	for _, ext := range imageExts {
		p.images[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	return p
}

// IsOwner reports whether path may own companion files.
func (p *Pairer) IsOwner(path string) bool {
	ext, ok := pathclass.Extension(filepath.Base(path))
	return ok && p.images[ext]
}

// CompanionsOf returns the existing companion files of owner.
func (p *Pairer) CompanionsOf(owner string) []Companion {
	if !p.IsOwner(owner) {
		return nil
	}

	var companions []Companion
	for _, suffix := range p.suffixes {
		candidate := owner + suffix
		if pathclass.IsFile(candidate) {
			companions = append(companions, Companion{Path: candidate, Suffix: suffix})
		}
	}

	return companions
}

// Pair groups files into entries, keeping the input order. Companions found
// for an owner are removed from the independent list even when they were not
// part of files. Companion-looking files without an owner stay independent.
func (p *Pairer) Pair(files []string) []Entry {
	claimed := make(map[string]bool)
	owned := make(map[string][]Companion)

	for _, file := range files {
		if claimed[file] {
			continue
		}
		companions := p.CompanionsOf(file)
		if len(companions) == 0 {
			continue
		}
		owned[file] = companions
		for _, c := range companions {
			claimed[c.Path] = true
		}
	}

	entries := make([]Entry, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, file := range files {
		if claimed[file] || seen[file] {
			continue
		}
		seen[file] = true
		entries = append(entries, Entry{Path: file, Companions: owned[file]})
	}

	return entries
}
