// Package progress provides stage-labelled progress reporting for a run.
package progress

// Stage names one phase of a run.
type Stage string

const (
	StageDirectories Stage = "directories"
	StageStaging     Stage = "staging"
	StageCommitting  Stage = "committing"
	StageVerifying   Stage = "verifying"
)

// Func receives progress updates. processed never exceeds total.
type Func func(stage Stage, processed, total int)

// Emit calls cb with clamped processed/total values.
// It is a no-op when cb is nil or total is non-positive.
func Emit(cb Func, stage Stage, processed, total int) {
	if cb == nil || total <= 0 {
		return
	}

	if processed < 0 {
		processed = 0
	}
	if processed > total {
		processed = total
	}

	cb(stage, processed, total)
}
