// Package transform computes new names for files and directories.
//
// A name goes through, in order: case conversion, the post rules (spaces to
// underscores, then the "Of" -> "of" fixup) and the optional substitution.
// Sequential naming replaces all of that for files.
package transform

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"namefmt/pkg/config"
	"namefmt/pkg/pathclass"
	"namefmt/pkg/sequence"
)

// Rule is a literal replacement applied to every occurrence of Pattern.
type Rule struct {
	Pattern     string
	Replacement string
}

// DefaultRules are applied after case conversion. The "Of" rule keeps the
// connective lower-case after capitalization; it also hits names that merely
// contain "Of" (e.g. "Office" becomes "office").
var DefaultRules = []Rule{
	{Pattern: " ", Replacement: "_"},
	{Pattern: "Of", Replacement: "of"},
}

// Transformer maps original names to new names for one run.
type Transformer struct {
	caseMode   config.CaseMode
	substitute *config.Substitution
	prefix     string
	rules      []Rule
	lower      cases.Caser
}

// New creates a Transformer from the run configuration.
func New(cfg config.Config) *Transformer {
	return &Transformer{
		caseMode:   cfg.CaseMode,
		substitute: cfg.Substitute,
		prefix:     cfg.SequencePrefix,
		rules:      append([]Rule(nil), DefaultRules...),
		lower:      cases.Lower(language.Und),
	}
}

// Name applies case conversion, post rules and substitution to a base name.
func (t *Transformer) Name(name string) string {
	switch t.caseMode {
	case config.CaseLower:
		name = t.lower.String(name)
	case config.CaseCapitalize:
		name = t.capitalize(name)
	}

	for _, rule := range t.rules {
		name = strings.ReplaceAll(name, rule.Pattern, rule.Replacement)
	}

	if t.substitute != nil {
		name = strings.ReplaceAll(name, t.substitute.Old, t.substitute.New)
	}

	return name
}

// capitalize treats underscores as spaces and capitalizes every
// whitespace-separated word. Separators are kept as they are.
func (t *Transformer) capitalize(name string) string {
	rest := strings.ReplaceAll(name, "_", " ")

	var b strings.Builder
	b.Grow(len(rest))
	for rest != "" {
		start := strings.IndexFunc(rest, func(r rune) bool { return !unicode.IsSpace(r) })
		if start < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])
		rest = rest[start:]

		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			end = len(rest)
		}
		b.WriteString(t.capitalizeWord(rest[:end]))
		rest = rest[end:]
	}

	return b.String()
}

// capitalizeWord upper-cases the first rune of word and lower-cases the rest.
func (t *Transformer) capitalizeWord(word string) string {
	first, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToTitle(first)) + t.lower.String(word[size:])
}

// SequenceName returns "{prefix}_{n}" keeping the lower-cased extension of name.
func (t *Transformer) SequenceName(name string, n int) string {
	if ext, ok := pathclass.Extension(name); ok {
		return fmt.Sprintf("%s_%d.%s", t.prefix, n, ext)
	}

	return fmt.Sprintf("%s_%d", t.prefix, n)
}

// FilePath returns the new path of the file at path. In sequential mode the
// counter supplies the index; it is not touched otherwise.
func (t *Transformer) FilePath(path string, counter *sequence.Counter) string {
	dir, name := filepath.Split(path)

	if t.prefix != "" {
		return filepath.Join(dir, t.SequenceName(name, counter.Next(filepath.Clean(dir))))
	}

	return filepath.Join(dir, t.Name(name))
}

// DirPath returns the new path of the directory at path. Directories are
// never numbered.
func (t *Transformer) DirPath(path string) string {
	clean := filepath.Clean(path)
	dir, name := filepath.Split(clean)

	return filepath.Join(dir, t.Name(name))
}
