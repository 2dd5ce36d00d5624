// Package config holds the immutable run configuration shared by every
// renaming component.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig indicates a flag combination that cannot be executed.
var ErrInvalidConfig = errors.New("invalid configuration")

// CaseMode selects the case conversion applied to names.
type CaseMode int

const (
	// CaseNone leaves letter case untouched.
	CaseNone CaseMode = iota
	// CaseLower lowercases the whole name.
	CaseLower
	// CaseCapitalize capitalizes the first letter of each word.
	CaseCapitalize
)

// String returns the flag-style name of the mode.
func (m CaseMode) String() string {
	switch m {
	case CaseLower:
		return "lower"
	case CaseCapitalize:
		return "capitalize"
	default:
		return "none"
	}
}

// Substitution replaces every occurrence of Old with New.
type Substitution struct {
	Old string
	New string
}

// ParseSubstitution parses an "old/new" rule. Only the first '/' separates
// the two halves, any further '/' belongs to New.
func ParseSubstitution(rule string) (*Substitution, error) {
	oldPart, newPart, ok := strings.Cut(rule, "/")
	if !ok {
		return nil, fmt.Errorf("%w: substitution %q must have the form old/new", ErrInvalidConfig, rule)
	}
	if oldPart == "" {
		return nil, fmt.Errorf("%w: substitution %q has an empty search string", ErrInvalidConfig, rule)
	}

	return &Substitution{Old: oldPart, New: newPart}, nil
}

// Config is built once from the command line and never mutated afterwards.
type Config struct {
	CaseMode       CaseMode
	Recursive      bool
	FilesOnly      bool
	ExcludeDirs    []string
	Substitute     *Substitution
	SequencePrefix string
	DryRun         bool
	Verify         bool

	// ImageExtensions lists lower-case extensions (without dot) of files that
	// may own companion files.
	ImageExtensions []string
	// CompanionSuffixes are appended to an owner's full name to find its
	// companions, e.g. "photo.jpg" + ".pp3".
	CompanionSuffixes []string
	// StagingSuffix is appended to every file during the stage phase.
	StagingSuffix string
}

// Sequential reports whether sequential numbering is active.
func (c Config) Sequential() bool {
	return c.SequencePrefix != ""
}

// ValidateFlags rejects command-line flag combinations that cannot be
// executed. It does not look at the tunables filled in by WithDefaults.
func (c Config) ValidateFlags() error {
	if c.Sequential() && c.Recursive {
		return fmt.Errorf("%w: sequential naming cannot be combined with recursive mode", ErrInvalidConfig)
	}
	if strings.ContainsRune(c.SequencePrefix, '/') {
		return fmt.Errorf("%w: name prefix %q must not contain '/'", ErrInvalidConfig, c.SequencePrefix)
	}

	return nil
}

// Validate checks a complete configuration, defaults included, before any
// filesystem mutation happens.
func (c Config) Validate() error {
	if err := c.ValidateFlags(); err != nil {
		return err
	}
	if c.StagingSuffix == "" {
		return fmt.Errorf("%w: staging suffix must not be empty", ErrInvalidConfig)
	}
	if strings.ContainsRune(c.StagingSuffix, '/') {
		return fmt.Errorf("%w: staging suffix %q must not contain '/'", ErrInvalidConfig, c.StagingSuffix)
	}
	for _, suffix := range c.CompanionSuffixes {
		if suffix == "" || strings.ContainsRune(suffix, '/') {
			return fmt.Errorf("%w: invalid companion suffix %q", ErrInvalidConfig, suffix)
		}
	}

	return nil
}

// WithDefaults fills tunables left empty by the caller from d.
func (c Config) WithDefaults(d Defaults) Config {
	if len(c.ImageExtensions) == 0 {
		c.ImageExtensions = append([]string(nil), d.ImageExtensions...)
	}
	if len(c.CompanionSuffixes) == 0 {
		c.CompanionSuffixes = append([]string(nil), d.CompanionSuffixes...)
	}
	if c.StagingSuffix == "" {
		c.StagingSuffix = d.StagingSuffix
	}
	c.ExcludeDirs = mergeUnique(d.ExcludeDirs, c.ExcludeDirs)

	return c
}

func mergeUnique(lists ...[]string) []string {
	seen := make(map[string]bool)
	var merged []string
	for _, list := range lists {
		for _, item := range list {
			if item == "" || seen[item] {
				continue
			}
			seen[item] = true
			merged = append(merged, item)
		}
	}

	return merged
}
