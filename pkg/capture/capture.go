// Package capture resolves the time a file was captured or created, used to
// order files before sequential numbering.
package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/djherbis/times"
	"github.com/rwcarlsen/goexif/exif"
)

// ErrUnreadableMetadata indicates the file carries no usable embedded date.
var ErrUnreadableMetadata = errors.New("unreadable capture metadata")

// MetadataReader extracts the capture timestamp embedded in a file.
type MetadataReader interface {
	CaptureTime(path string) (time.Time, error)
}

// ExifReader reads DateTimeOriginal (falling back to DateTime) from EXIF data.
type ExifReader struct{}

// CaptureTime implements MetadataReader.
func (ExifReader) CaptureTime(path string) (time.Time, error) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrUnreadableMetadata, err)
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrUnreadableMetadata, err)
	}

	taken, err := x.DateTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrUnreadableMetadata, err)
	}

	return taken, nil
}

// Resolver picks the best available timestamp for a file: embedded capture
// time, then birth time, then modification time.
type Resolver struct {
	meta   MetadataReader
	logger *log.Logger
}

// NewResolver creates a Resolver. A nil meta reader disables embedded
// metadata lookups; a nil logger discards debug output.
func NewResolver(meta MetadataReader, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Resolver{meta: meta, logger: logger}
}

// Time returns the capture time of path. Only filesystem stat failures are
// returned as errors.
func (r *Resolver) Time(path string) (time.Time, error) {
	if r.meta != nil {
		taken, err := r.meta.CaptureTime(path)
		if err == nil {
			return taken, nil
		}
		r.logger.Debug("no embedded capture time, using filesystem times", "path", path, "reason", err)
	}

	ts, err := times.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", path, err)
	}

	if ts.HasBirthTime() {
		return ts.BirthTime(), nil
	}

	return ts.ModTime(), nil
}
