package executor

// Mode selects which steps a run covers.
type Mode int

const (
	// ModeFull covers every step in declared order.
	ModeFull Mode = iota
	// ModeSingle covers exactly one named step. Its predecessors are not
	// auto-run; correct sequencing is the operator's responsibility.
	ModeSingle
	// ModeStartFrom unconditionally skips every step declared before the
	// named step and covers the rest.
	ModeStartFrom
)

// RunIntent is the operator's request for a single invocation.
type RunIntent struct {
	Mode    Mode
	StepKey string

	// Force treats every in-scope step as stale regardless of timestamps.
	// It does not manufacture absent inputs: missing required inputs still
	// halt the run.
	Force bool
}

func (i RunIntent) String() string {
	var s string
	switch i.Mode {
	case ModeSingle:
		s = "step " + i.StepKey
	case ModeStartFrom:
		s = "start from " + i.StepKey
	default:
		s = "full run"
	}
	if i.Force {
		s += " (forced)"
	}
	return s
}
