package executor

import (
	"time"

	"github.com/kbbdata/fecho/internal/config"
	"github.com/kbbdata/fecho/internal/period"
	"github.com/kbbdata/fecho/internal/staleness"
)

// StepResult is the terminal record of one step within a run.
type StepResult struct {
	Step     *config.Step
	State    State
	Verdict  *staleness.Verdict
	Duration time.Duration
	Err      error
}

// RunReport is the outcome of one executor invocation.
type RunReport struct {
	Pipeline string
	Period   period.Context
	Intent   RunIntent
	Results  []StepResult
}

// Failed reports whether any step ended in the Failed state.
func (r *RunReport) Failed() bool {
	for _, res := range r.Results {
		if res.State == Failed {
			return true
		}
	}
	return false
}

// ManualPause returns the step the run paused on, if any.
func (r *RunReport) ManualPause() *config.Step {
	for _, res := range r.Results {
		if res.State == AwaitingManual {
			return res.Step
		}
	}
	return nil
}

// Executed returns how many steps actually ran to completion.
func (r *RunReport) Executed() int {
	n := 0
	for _, res := range r.Results {
		if res.State == Succeeded {
			n++
		}
	}
	return n
}

// Skipped returns how many steps were skipped (fresh, out of scope, or
// optional with no inputs).
func (r *RunReport) Skipped() int {
	n := 0
	for _, res := range r.Results {
		switch res.State {
		case SkippedFresh, SkippedOutOfScope, SkippedMissingOptional:
			n++
		}
	}
	return n
}
