// Package safepath provides the move primitive used by every rename. A move
// never leaves the source's directory and never replaces an existing entry.
package safepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrPathEscape indicates a destination outside the source's directory.
	ErrPathEscape = errors.New("path escapes parent directory")
	// ErrTargetExists indicates the destination is already occupied.
	ErrTargetExists = errors.New("target already exists")
	// ErrInvalidName indicates an empty or dot-only destination name.
	ErrInvalidName = errors.New("invalid target name")
)

// Mover moves src to dst.
type Mover interface {
	Move(src, dst string) error
}

// OSMover moves entries with os.Rename after SafeRename's checks.
type OSMover struct{}

// Move implements Mover.
func (OSMover) Move(src, dst string) error {
	return SafeRename(src, dst)
}

// ValidateSibling checks that newPath names an entry in the same directory as
// oldPath.
func ValidateSibling(oldPath, newPath string) error {
	switch filepath.Base(newPath) {
	case ".", "..", string(filepath.Separator):
		return fmt.Errorf("%w: %q", ErrInvalidName, newPath)
	}

	oldAbs, err := filepath.Abs(oldPath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve %s", ErrPathEscape, oldPath)
	}
	newAbs, err := filepath.Abs(newPath)
	if err != nil {
		return fmt.Errorf("%w: cannot resolve %s", ErrPathEscape, newPath)
	}

	if filepath.Dir(oldAbs) != filepath.Dir(newAbs) {
		return fmt.Errorf("%w: %s -> %s", ErrPathEscape, oldPath, newPath)
	}

	return nil
}

// SafeRename renames oldPath to newPath within one directory. An existing
// destination is only accepted when it is oldPath itself, which happens for
// case-only renames on case-insensitive filesystems.
func SafeRename(oldPath, newPath string) error {
	if err := ValidateSibling(oldPath, newPath); err != nil {
		return err
	}

	srcInfo, err := os.Lstat(oldPath)
	if err != nil {
		return fmt.Errorf("cannot stat source: %w", err)
	}

	if dstInfo, err := os.Lstat(newPath); err == nil {
		if !os.SameFile(srcInfo, dstInfo) {
			return fmt.Errorf("%w: %s", ErrTargetExists, newPath)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("cannot stat destination: %w", err)
	}

	return os.Rename(oldPath, newPath)
}
