package executor

import "fmt"

// State is the lifecycle state of one step within a run.
type State int

const (
	// Pending means the step has not been reached yet (or the run halted
	// before reaching it).
	Pending State = iota
	// SkippedOutOfScope means the run intent excluded the step; it was never
	// resolved nor evaluated.
	SkippedOutOfScope
	// SkippedFresh means the step's outputs are up to date with its inputs.
	SkippedFresh
	// SkippedMissingOptional means an optional step resolved zero inputs and
	// was skipped with a warning.
	SkippedMissingOptional
	// Running means the step's external command is executing.
	Running
	// Succeeded means the external command exited zero.
	Succeeded
	// Failed means the external command exited non-zero, or a required step
	// had no inputs.
	Failed
	// AwaitingManual means the run paused at a human-gated step and is
	// waiting for the operator to act outside the process.
	AwaitingManual
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case SkippedOutOfScope:
		return "out of scope"
	case SkippedFresh:
		return "fresh"
	case SkippedMissingOptional:
		return "skipped (optional, no inputs)"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case AwaitingManual:
		return "awaiting manual action"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
