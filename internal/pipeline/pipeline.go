// Package pipeline provides the step state machine for the resume
// generation wizard: experience → project → skills → output.
package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// Step is one stage of the generation wizard.
type Step string

// Wizard steps in order.
const (
	StepExperience Step = "experience"
	StepProject    Step = "project"
	StepSkills     Step = "skills"
	StepOutput     Step = "output"
)

// Order is the canonical step sequence.
var Order = []Step{StepExperience, StepProject, StepSkills, StepOutput}

// index returns a step's position in Order, or -1.
func index(step Step) int {
	for i, s := range Order {
		if s == step {
			return i
		}
	}
	return -1
}

// NavigationError indicates a forbidden step transition. The attempted
// navigation is a no-op; active step and flags are unchanged.
type NavigationError struct {
	From Step
	To   Step
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("cannot navigate from %s to %s", e.From, e.To)
}

// State is a snapshot of the controller for display or transport.
type State struct {
	ActiveStep     Step           `json:"activeStep"`
	Completed      map[Step]bool  `json:"completed"`
	JobRole        string         `json:"jobRole"`
	JobDescription string         `json:"jobDescription"`
	Revised        map[Step]int64 `json:"revised,omitempty"` // unix seconds of last output revision
}

// Controller sequences the generation steps. Forward navigation is gated on
// completing the prior step; backward navigation is always allowed.
// Re-entering a completed step neither resets its flag nor invalidates later
// steps' data, but revisions are timestamped so callers can detect staleness.
type Controller struct {
	mu             sync.Mutex
	active         Step
	completed      map[Step]bool
	completedAt    map[Step]time.Time
	revisedAt      map[Step]time.Time
	jobRole        string
	jobDescription string

	now func() time.Time // test hook
}

// New creates a controller at the experience step with nothing completed.
func New() *Controller {
	return &Controller{
		active:      StepExperience,
		completed:   make(map[Step]bool),
		completedAt: make(map[Step]time.Time),
		revisedAt:   make(map[Step]time.Time),
		now:         time.Now,
	}
}

// ActiveStep returns the current step.
func (c *Controller) ActiveStep() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Completed reports whether the given step has been completed.
func (c *Controller) Completed(step Step) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed[step]
}

// CanNavigate reports whether manual navigation to the target step is
// allowed: any step at or before the current one, or the immediately next
// step when the current one is complete.
func (c *Controller) CanNavigate(target Step) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canNavigateLocked(target)
}

func (c *Controller) canNavigateLocked(target Step) bool {
	current := index(c.active)
	want := index(target)
	if want < 0 {
		return false
	}
	if want <= current {
		return true
	}
	if want == current+1 {
		return c.completed[c.active]
	}
	return false
}

// NavigateTo moves to the target step if allowed. A forbidden navigation
// returns *NavigationError and changes nothing.
func (c *Controller) NavigateTo(target Step) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.canNavigateLocked(target) {
		return &NavigationError{From: c.active, To: target}
	}
	c.active = target
	return nil
}

// CompleteStep marks a step complete and, when it is the active step,
// auto-advances to the next one. Completing an already-completed step keeps
// its flag and only refreshes the completion time.
func (c *Controller) CompleteStep(step Step) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := index(step)
	if i < 0 {
		return fmt.Errorf("unknown step: %s", step)
	}

	c.completed[step] = true
	c.completedAt[step] = c.now()

	if c.active == step && i < len(Order)-1 {
		c.active = Order[i+1]
	}
	return nil
}

// MarkCompleted flips a step's completed flag without moving the active
// step. Generation uses this so the user can review output before advancing.
func (c *Controller) MarkCompleted(step Step) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index(step) < 0 {
		return fmt.Errorf("unknown step: %s", step)
	}
	c.completed[step] = true
	c.completedAt[step] = c.now()
	return nil
}

// MarkRevised records that a step's output changed (regeneration or manual
// edit). Later steps already completed are not invalidated.
func (c *Controller) MarkRevised(step Step) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revisedAt[step] = c.now()
}

// StaleSteps returns the completed steps whose output predates a later
// revision of an earlier step. Nothing is cleared; this only informs.
func (c *Controller) StaleSteps() []Step {
	c.mu.Lock()
	defer c.mu.Unlock()

	var stale []Step
	for i, step := range Order {
		if !c.completed[step] {
			continue
		}
		done := c.completedAt[step]
		for _, earlier := range Order[:i] {
			if rev, ok := c.revisedAt[earlier]; ok && rev.After(done) {
				stale = append(stale, step)
				break
			}
		}
	}
	return stale
}

// JobRole returns the shared target job role.
func (c *Controller) JobRole() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.jobRole
}

// JobDescription returns the shared job description text.
func (c *Controller) JobDescription() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.jobDescription
}

// SetSharedFields updates the pipeline-wide job role and description. These
// persist across steps, so an edit in one step is visible from all others.
func (c *Controller) SetSharedFields(jobRole, jobDescription string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobRole = jobRole
	c.jobDescription = jobDescription
}

// Snapshot returns a copy of the controller state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	completed := make(map[Step]bool, len(c.completed))
	for step, done := range c.completed {
		completed[step] = done
	}
	revised := make(map[Step]int64, len(c.revisedAt))
	for step, at := range c.revisedAt {
		revised[step] = at.Unix()
	}
	return State{
		ActiveStep:     c.active,
		Completed:      completed,
		JobRole:        c.jobRole,
		JobDescription: c.jobDescription,
		Revised:        revised,
	}
}
