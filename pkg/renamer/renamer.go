// Package renamer moves files and directories to their transformed names.
//
// Directories are renamed directly. Files are renamed in two phases: every
// file of the batch is first moved to a staging name (original name plus the
// staging suffix, numbered when that name is taken), then each staged file is
// moved to its final name. Once the stage phase is done no original name of
// the batch is occupied, so a batch that swaps or shifts names never
// overwrites one of its own files. Before anything is committed the final
// names are planned: an entry whose final name is claimed by another entry or
// occupied by a file outside the batch is failed and moved back.
package renamer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"namefmt/pkg/pathclass"
	"namefmt/pkg/progress"
	"namefmt/pkg/safepath"
	"namefmt/pkg/sequence"
	"namefmt/pkg/sidecar"
	"namefmt/pkg/transform"
)

// ErrMove matches every *MoveError.
var ErrMove = errors.New("move failed")

// MoveError reports a failed move primitive call.
type MoveError struct {
	Src string
	Dst string
	Err error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %s -> %s: %v", e.Src, e.Dst, e.Err)
}

func (e *MoveError) Unwrap() []error {
	return []error{ErrMove, e.Err}
}

// State is the lifecycle position of a Target.
type State int

const (
	StateDiscovered State = iota
	StateStaged
	StateCommitted
	StateSkipped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDiscovered:
		return "discovered"
	case StateStaged:
		return "staged"
	case StateCommitted:
		return "committed"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Target is one path being renamed.
type Target struct {
	OriginalPath string
	StagedPath   string
	FinalPath    string
	IsDir        bool
	IsCompanion  bool
	State        State
	SkipReason   string
	Err          error

	// Companions are the sidecar targets renamed with this owner.
	Companions []*Target

	suffix string
}

// OriginalName returns the base name before renaming.
func (t *Target) OriginalName() string {
	return filepath.Base(t.OriginalPath)
}

// NewName returns the base name after renaming, or "" when none was computed.
func (t *Target) NewName() string {
	if t.FinalPath == "" {
		return ""
	}
	return filepath.Base(t.FinalPath)
}

func (t *Target) fail(err error) {
	t.State = StateFailed
	t.Err = err
}

func (t *Target) skip(reason string) {
	t.State = StateSkipped
	t.SkipReason = reason
}

// Rename is one performed old -> new path change.
type Rename struct {
	Old string
	New string
}

// Result contains the outcome of a batch.
type Result struct {
	Operations   []*Target
	TotalCount   int
	RenamedCount int
	SkippedCount int
	ErrorCount   int
}

func (r *Result) add(t *Target) {
	r.Operations = append(r.Operations, t)
	r.TotalCount++

	switch t.State {
	case StateCommitted:
		r.RenamedCount++
	case StateFailed:
		r.ErrorCount++
	default:
		r.SkippedCount++
	}
}

// Merge appends the operations and counts of other.
func (r *Result) Merge(other Result) {
	r.Operations = append(r.Operations, other.Operations...)
	r.TotalCount += other.TotalCount
	r.RenamedCount += other.RenamedCount
	r.SkippedCount += other.SkippedCount
	r.ErrorCount += other.ErrorCount
}

// Renamed returns the committed renames in the order they happened.
func (r Result) Renamed() []Rename {
	var renames []Rename
	for _, op := range r.Operations {
		if op.State == StateCommitted {
			renames = append(renames, Rename{Old: op.OriginalPath, New: op.FinalPath})
		}
	}

	return renames
}

// Err joins the errors of all failed operations.
func (r Result) Err() error {
	var errs []error
	for _, op := range r.Operations {
		if op.Err != nil {
			errs = append(errs, op.Err)
		}
	}

	return errors.Join(errs...)
}

// Options configures a Renamer.
type Options struct {
	DryRun        bool
	StagingSuffix string
	// Mover performs real moves; nil means safepath.OSMover. Ignored in dry-run.
	Mover      safepath.Mover
	Logger     *log.Logger
	OnProgress progress.Func
}

// Renamer applies a Transformer to batches of directories and files.
type Renamer struct {
	transformer *transform.Transformer
	mover       safepath.Mover
	dryRun      bool
	suffix      string
	logger      *log.Logger
	onProgress  progress.Func
}

type dryRunMover struct{}

func (dryRunMover) Move(_, _ string) error { return nil }

// New creates a Renamer.
func New(transformer *transform.Transformer, opts Options) *Renamer {
	mover := opts.Mover
	if mover == nil {
		mover = safepath.OSMover{}
	}
	if opts.DryRun {
		mover = dryRunMover{}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Renamer{
		transformer: transformer,
		mover:       mover,
		dryRun:      opts.DryRun,
		suffix:      opts.StagingSuffix,
		logger:      logger,
		onProgress:  opts.OnProgress,
	}
}

// DryRun returns whether the renamer is in dry-run mode.
func (r *Renamer) DryRun() bool {
	return r.dryRun
}

// RenameDirectories renames each directory directly, in the given order.
// Callers pass children before parents.
func (r *Renamer) RenameDirectories(dirs []string) Result {
	var result Result

	for i, dir := range dirs {
		t := &Target{
			OriginalPath: dir,
			FinalPath:    r.transformer.DirPath(dir),
			IsDir:        true,
		}
		r.renameDirect(t)
		result.add(t)
		progress.Emit(r.onProgress, progress.StageDirectories, i+1, len(dirs))
	}

	return result
}

func (r *Renamer) renameDirect(t *Target) {
	if filepath.Clean(t.FinalPath) == filepath.Clean(t.OriginalPath) {
		t.skip("name unchanged")
		return
	}

	if err := safepath.ValidateSibling(t.OriginalPath, t.FinalPath); err != nil {
		t.fail(fmt.Errorf("new name for %s: %w", t.OriginalPath, err))
		return
	}

	if err := r.move(t.OriginalPath, t.FinalPath); err != nil {
		t.fail(err)
		return
	}

	t.State = StateCommitted
}

// RenameFiles stages every entry, then commits the staged entries in order.
// In sequential mode the entry order decides the numbering.
func (r *Renamer) RenameFiles(entries []sidecar.Entry) Result {
	owners := make([]*Target, 0, len(entries))
	for _, entry := range entries {
		owner := &Target{OriginalPath: entry.Path}
		for _, c := range entry.Companions {
			owner.Companions = append(owner.Companions, &Target{
				OriginalPath: c.Path,
				IsCompanion:  true,
				suffix:       c.Suffix,
			})
		}
		owners = append(owners, owner)
	}

	reserved := make(map[string]bool, len(owners))
	for _, owner := range owners {
		for _, t := range owner.group() {
			reserved[filepath.Clean(t.OriginalPath)] = true
		}
	}

	for i, owner := range owners {
		r.stage(owner, reserved)
		progress.Emit(r.onProgress, progress.StageStaging, i+1, len(owners))
	}

	r.plan(owners)

	var result Result
	for i, owner := range owners {
		r.commit(owner)

		result.add(owner)
		for _, c := range owner.Companions {
			result.add(c)
		}
		progress.Emit(r.onProgress, progress.StageCommitting, i+1, len(owners))
	}

	return result
}

// group returns the companions followed by the owner.
func (t *Target) group() []*Target {
	order := make([]*Target, 0, len(t.Companions)+1)
	order = append(order, t.Companions...)
	return append(order, t)
}

// stage moves the companions and then the owner to their staging names. On
// failure everything already staged for this entry is moved back.
func (r *Renamer) stage(owner *Target, reserved map[string]bool) {
	order := owner.group()

	for i, t := range order {
		t.StagedPath = r.stagingPath(t.OriginalPath, reserved)
		if err := r.move(t.OriginalPath, t.StagedPath); err != nil {
			t.fail(err)
			r.unstage(order[:i])
			for _, rest := range order[i+1:] {
				rest.skip("entry could not be staged")
			}
			return
		}
		t.State = StateStaged
	}
}

// stagingPath returns path plus the staging suffix, numbered when that name
// is already used on disk or reserved by the batch. The returned name is
// reserved.
func (r *Renamer) stagingPath(path string, reserved map[string]bool) string {
	staged := path + r.suffix
	for i := 1; reserved[filepath.Clean(staged)] || pathclass.Exists(staged); i++ {
		staged = fmt.Sprintf("%s%s%d", path, r.suffix, i)
	}
	reserved[filepath.Clean(staged)] = true

	return staged
}

func (r *Renamer) unstage(staged []*Target) {
	for _, t := range staged {
		if err := r.restore(t); err != nil {
			t.fail(err)
			continue
		}
		t.skip("entry could not be staged")
	}
}

// plan computes the final names of every staged entry and fails the entries
// whose final names cannot be taken. Entries that keep their name claim it
// first, the rest claim in batch order.
func (r *Renamer) plan(owners []*Target) {
	counter := sequence.New()
	vacated := make(map[string]bool)
	staging := make(map[string]bool)

	var staged []*Target
	for _, owner := range owners {
		if owner.State != StateStaged {
			continue
		}
		owner.FinalPath = r.transformer.FilePath(owner.OriginalPath, counter)
		for _, c := range owner.Companions {
			c.FinalPath = owner.FinalPath + c.suffix
		}
		for _, t := range owner.group() {
			vacated[filepath.Clean(t.OriginalPath)] = true
			staging[filepath.Clean(t.StagedPath)] = true
		}
		staged = append(staged, owner)
	}

	sort.SliceStable(staged, func(i, j int) bool {
		return unchanged(staged[i]) && !unchanged(staged[j])
	})

	claimed := make(map[string]*Target)
	for _, owner := range staged {
		if err := claim(owner, claimed, vacated, staging); err != nil {
			r.abort(owner, err)
		}
	}
}

// claim reserves the final names of owner and its companions.
func claim(owner *Target, claimed map[string]*Target, vacated, staging map[string]bool) error {
	if err := safepath.ValidateSibling(owner.OriginalPath, owner.FinalPath); err != nil {
		return fmt.Errorf("new name for %s: %w", owner.OriginalPath, err)
	}

	group := owner.group()
	for _, t := range group {
		key := filepath.Clean(t.FinalPath)
		if other, ok := claimed[key]; ok {
			return &MoveError{
				Src: t.OriginalPath,
				Dst: t.FinalPath,
				Err: fmt.Errorf("%w: also the new name of %s", safepath.ErrTargetExists, other.OriginalPath),
			}
		}
		if staging[key] || (!vacated[key] && occupied(t)) {
			return &MoveError{
				Src: t.OriginalPath,
				Dst: t.FinalPath,
				Err: fmt.Errorf("%w: %s", safepath.ErrTargetExists, t.FinalPath),
			}
		}
	}

	for _, t := range group {
		claimed[filepath.Clean(t.FinalPath)] = t
	}

	return nil
}

func (r *Renamer) commit(owner *Target) {
	if owner.State != StateStaged {
		return
	}

	if err := r.move(owner.StagedPath, owner.FinalPath); err != nil {
		r.abort(owner, err)
		return
	}
	settle(owner)

	for _, c := range owner.Companions {
		if err := r.move(c.StagedPath, c.FinalPath); err != nil {
			if rerr := r.restore(c); rerr != nil {
				err = errors.Join(err, rerr)
			}
			c.fail(err)
			continue
		}
		settle(c)
	}
}

// abort moves the owner and its companions back to their original names.
func (r *Renamer) abort(owner *Target, err error) {
	if rerr := r.restore(owner); rerr != nil {
		err = errors.Join(err, rerr)
	}
	owner.fail(err)

	for _, c := range owner.Companions {
		if rerr := r.restore(c); rerr != nil {
			c.fail(rerr)
			continue
		}
		c.skip("owner was not renamed")
	}
}

func (r *Renamer) restore(t *Target) error {
	if err := r.move(t.StagedPath, t.OriginalPath); err != nil {
		r.logger.Warn("file left under staging name", "path", t.StagedPath, "err", err)
		return fmt.Errorf("restore %s: left at %s: %w", t.OriginalPath, t.StagedPath, err)
	}

	return nil
}

func unchanged(t *Target) bool {
	return filepath.Clean(t.FinalPath) == filepath.Clean(t.OriginalPath)
}

// occupied reports whether a file other than t itself lives at t's final
// path. A case-only rename finds its own file there on case-insensitive
// filesystems.
func occupied(t *Target) bool {
	dst, err := os.Lstat(t.FinalPath)
	if err != nil {
		return false
	}
	own, err := os.Lstat(t.OriginalPath)
	return err != nil || !os.SameFile(dst, own)
}

func settle(t *Target) {
	if unchanged(t) {
		t.skip("name unchanged")
		return
	}
	t.State = StateCommitted
}

func (r *Renamer) move(src, dst string) error {
	if err := r.mover.Move(src, dst); err != nil {
		return &MoveError{Src: src, Dst: dst, Err: err}
	}

	r.logger.Debug("moved", "src", src, "dst", dst, "dry_run", r.dryRun)
	return nil
}
