// Package usecase provides application-level orchestration for the CLI.
package usecase

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"namefmt/pkg/capture"
	"namefmt/pkg/config"
	"namefmt/pkg/hasher"
	"namefmt/pkg/ordering"
	"namefmt/pkg/pathclass"
	"namefmt/pkg/progress"
	"namefmt/pkg/renamer"
	"namefmt/pkg/safepath"
	"namefmt/pkg/sidecar"
	"namefmt/pkg/transform"
	"namefmt/pkg/walker"
)

// ErrTreeChanged is returned by a verified run whose content digest differs
// before and after renaming.
var ErrTreeChanged = errors.New("tree content changed during rename")

// Options configures a Service.
type Options struct {
	// Defaults fill the tunables a request leaves empty. Anything still
	// empty falls back to config.DefaultDefaults.
	Defaults config.Defaults
	Logger   *log.Logger
	// MetadataReader supplies capture times; nil means capture.ExifReader.
	MetadataReader capture.MetadataReader
	// Mover performs moves; nil means safepath.OSMover.
	Mover safepath.Mover
}

// Service orchestrates rename runs without Cobra dependencies.
type Service struct {
	defaults config.Defaults
	logger   *log.Logger
	meta     capture.MetadataReader
	mover    safepath.Mover
}

// New creates a use-case service.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	meta := opts.MetadataReader
	if meta == nil {
		meta = capture.ExifReader{}
	}

	return &Service{
		defaults: opts.Defaults,
		logger:   logger,
		meta:     meta,
		mover:    opts.Mover,
	}
}

// RunRequest contains inputs for one run.
type RunRequest struct {
	Targets    []string
	Config     config.Config
	OnProgress progress.Func
}

// RunExecution contains run outputs. It is returned even when the run fails,
// holding every operation performed up to that point.
type RunExecution struct {
	Config config.Config
	// Targets are the request targets after every performed rename.
	Targets         []string
	FileCount       int
	CollectDuration time.Duration
	Directories     renamer.Result
	Files           renamer.Result
	Verified        bool
}

// Result returns the directory and file results combined, directories first.
func (e RunExecution) Result() renamer.Result {
	var combined renamer.Result
	combined.Merge(e.Directories)
	combined.Merge(e.Files)
	return combined
}

// Run renames directories (unless files-only), re-enumerates files from the
// updated targets, sorts and pairs them, then stages and commits them.
func (s *Service) Run(req RunRequest) (RunExecution, error) {
	cfg := req.Config.WithDefaults(s.defaults).WithDefaults(config.DefaultDefaults())
	execution := RunExecution{Config: cfg}

	if len(req.Targets) == 0 {
		return execution, fmt.Errorf("%w: no targets given", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return execution, err
	}

	targets, err := resolveTargets(req.Targets)
	if err != nil {
		return execution, err
	}
	execution.Targets = targets

	var before []string
	if cfg.Verify {
		before, err = digests(targets)
		if err != nil {
			return execution, fmt.Errorf("failed to digest targets: %w", err)
		}
	}

	w := walker.New(walker.Options{
		Recursive: cfg.Recursive,
		Exclude:   pathclass.NewExclusionSet(cfg.ExcludeDirs),
	})
	r := renamer.New(transform.New(cfg), renamer.Options{
		DryRun:        cfg.DryRun,
		StagingSuffix: cfg.StagingSuffix,
		Mover:         s.mover,
		Logger:        s.logger,
		OnProgress:    req.OnProgress,
	})

	if !cfg.FilesOnly {
		dirs, err := w.Directories(targets)
		if err != nil {
			return execution, fmt.Errorf("failed to collect directories: %w", err)
		}
		s.logger.Debug("renaming directories", "count", len(dirs))

		execution.Directories = r.RenameDirectories(dirs)
		if !cfg.DryRun {
			targets = remapTargets(targets, execution.Directories.Renamed())
			execution.Targets = targets
		}
	}

	entries, collectDuration, err := s.collectEntries(w, targets, cfg)
	execution.CollectDuration = collectDuration
	if err != nil {
		return execution, errors.Join(execution.Directories.Err(), err)
	}
	execution.FileCount = len(entries)
	s.logger.Debug("renaming files", "entries", len(entries), "sequential", cfg.Sequential())

	execution.Files = r.RenameFiles(entries)
	if !cfg.DryRun {
		execution.Targets = remapTargets(targets, execution.Files.Renamed())
	}

	runErr := execution.Result().Err()

	if cfg.Verify {
		if err := s.verify(execution.Targets, before, req.OnProgress); err != nil {
			return execution, errors.Join(runErr, err)
		}
		execution.Verified = true
	}

	return execution, runErr
}

func (s *Service) collectEntries(w *walker.Walker, targets []string, cfg config.Config) ([]sidecar.Entry, time.Duration, error) {
	startTime := time.Now()

	files, err := w.Files(targets)
	if err != nil {
		return nil, time.Since(startTime), fmt.Errorf("failed to collect files: %w", err)
	}

	if cfg.Sequential() {
		resolver := capture.NewResolver(s.meta, s.logger)
		if err := ordering.Chronological(files, resolver); err != nil {
			return nil, time.Since(startTime), fmt.Errorf("failed to order files: %w", err)
		}
	} else {
		ordering.Natural(files)
	}

	entries := sidecar.New(cfg.ImageExtensions, cfg.CompanionSuffixes).Pair(files)

	return entries, time.Since(startTime), nil
}

func (s *Service) verify(targets, before []string, onProgress progress.Func) error {
	after, err := digests(targets)
	if err != nil {
		return fmt.Errorf("failed to digest targets: %w", err)
	}

	for i := range targets {
		progress.Emit(onProgress, progress.StageVerifying, i+1, len(targets))
		if before[i] != after[i] {
			return fmt.Errorf("%w: %s", ErrTreeChanged, targets[i])
		}
	}

	s.logger.Debug("tree digests match", "targets", len(targets))
	return nil
}

// resolveTargets cleans every target and fails on the first one that cannot
// be stat'ed, before anything is renamed.
func resolveTargets(targets []string) ([]string, error) {
	resolved := make([]string, 0, len(targets))
	for _, target := range targets {
		clean := filepath.Clean(target)
		if _, err := os.Lstat(clean); err != nil {
			return nil, fmt.Errorf("%w: %w", walker.ErrTraversal, err)
		}
		resolved = append(resolved, clean)
	}

	return resolved, nil
}

// remapTargets rewrites targets that were renamed, or that live below a
// renamed directory, to their current paths. Renames are applied in order.
func remapTargets(targets []string, renames []renamer.Rename) []string {
	out := append([]string(nil), targets...)

	for _, rn := range renames {
		oldPath := filepath.Clean(rn.Old)
		newPath := filepath.Clean(rn.New)
		prefix := oldPath + string(filepath.Separator)

		for i, target := range out {
			switch {
			case target == oldPath:
				out[i] = newPath
			case strings.HasPrefix(target, prefix):
				out[i] = filepath.Join(newPath, strings.TrimPrefix(target, prefix))
			}
		}
	}

	return out
}

func digests(targets []string) ([]string, error) {
	out := make([]string, 0, len(targets))
	for _, target := range targets {
		d, err := hasher.TreeDigest(target)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}

	return out, nil
}
