// Package generator implements the three resume generation steps. Each step
// reads its source items from the applicant profile held in the draft store,
// produces draft entries either by calling the generation backend or by a
// deterministic skip transform, and reports progress to the pipeline
// controller. Completing a step is a separate, explicit action so the user
// can review and edit generated output first.
package generator

import (
	"errors"
	"sync/atomic"

	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/store"
)

// Sentinel errors shared by the step generators.
var (
	// ErrNoSourceItems means the profile has nothing for this step to
	// transform; Generate and Skip are both unavailable.
	ErrNoSourceItems = errors.New("no source items to transform")

	// ErrGenerationInFlight means a generation call for this step is
	// already running.
	ErrGenerationInFlight = errors.New("generation already in progress")

	// ErrNoOutput means Complete was called before any output existed.
	ErrNoOutput = errors.New("no generated output to complete the step with")
)

// base carries the collaborators every step generator shares. The busy flag
// guards against concurrent Generate calls on the same step; edits and skips
// are cheap synchronous store writes and do not take it.
type base struct {
	store *store.Store
	pipe  *pipeline.Controller
	busy  atomic.Bool
}

func (b *base) begin() bool { return b.busy.CompareAndSwap(false, true) }
func (b *base) end()        { b.busy.Store(false) }

// resolveDensities produces one bullet count per source item. Zero or missing
// entries fall back to the step's default; extra entries are ignored.
func resolveDensities(requested []int, n, fallback int) []int {
	out := make([]int, n)
	for i := range out {
		if i < len(requested) && requested[i] > 0 {
			out[i] = requested[i]
		} else {
			out[i] = fallback
		}
	}
	return out
}
